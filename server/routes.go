package server

import (
	"sort"
	"strings"

	"github.com/kbukum/opkit/server/endpoint"
)

var systemPaths = map[string]bool{
	endpoint.HealthPath:  true,
	endpoint.ReadyPath:   true,
	endpoint.DocsPath:    true,
	endpoint.RawDocsPath: true,
}

// Route is a registered route as reported in the startup log.
type Route struct {
	Method  string
	Path    string
	Handler string
	System  bool
}

// Routes lists the registered routes: API routes first by path, then the
// system endpoints.
func (s *Server) Routes() []Route {
	info := s.engine.Routes()
	routes := make([]Route, 0, len(info))
	for _, r := range info {
		routes = append(routes, Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: handlerName(r.Handler),
			System:  systemPaths[r.Path],
		})
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].System != routes[j].System {
			return !routes[i].System
		}
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return methodOrder(routes[i].Method) < methodOrder(routes[j].Method)
	})
	return routes
}

// handlerName shortens Gin's handler path:
// "github.com/org/svc/api.(*UserPort).List-fm" becomes "UserPort.List" and
// closures such as "endpoint.Health.func1" become "Health".
func handlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 1 && strings.ToLower(parts[0]) == parts[0] {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
