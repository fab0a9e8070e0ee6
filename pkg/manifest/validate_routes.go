package manifest

import "fmt"

// validateRoutes normalizes every route and rejects duplicates.
func (c *Config) validateRoutes() error {
	seen := make(map[string]int, len(c.Routes))
	for i := range c.Routes {
		if err := c.Routes[i].normalize(); err != nil {
			return fmt.Errorf("route %d: %w", i, err)
		}
		if err := c.Routes[i].validate(); err != nil {
			return fmt.Errorf("route %d (%s %s): %w", i, c.Routes[i].Method, c.Routes[i].Path, err)
		}
		key := c.Routes[i].Method + " " + c.Routes[i].Path
		if j, dup := seen[key]; dup {
			return fmt.Errorf("route %d (%s): duplicates route %d", i, key, j)
		}
		seen[key] = i
	}
	return nil
}
