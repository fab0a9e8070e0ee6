package manifest

// HandlerType enumerates the supported handler kinds.
type HandlerType string

const (
	HandlerInproc   HandlerType = "inproc"
	HandlerProxy    HandlerType = "proxy"
	HandlerRedirect HandlerType = "redirect"

	HandlerLogin    HandlerType = "session.login"
	HandlerRegister HandlerType = "session.register"
	HandlerLogout   HandlerType = "session.logout"
	HandlerState    HandlerType = "session.state"
)

// Downstream credential kinds for Policy.DownAuth.
const (
	DownAuthNone          = "none"
	DownAuthSessionBearer = "session-bearer"
	DownAuthStaticBearer  = "static-bearer"
)

// Codec names accepted on a route.
const (
	CodecJSON       = "json"
	CodecJSONStrict = "json-strict"
)
