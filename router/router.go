package router

import (
	"strings"

	"github.com/edgerun/edgerun/apperrors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// node is one segment level of the path trie. Static children are looked up
// by exact segment match; at most one param child is allowed per node,
// bound when no static child consumes the segment.
type node struct {
	children  map[string]*node
	param     *node
	paramName string
	methods   *MethodTable
	pattern   string // the PathPattern that terminated here, for duplicate detection
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Match is the result of a successful Path Router lookup.
type Match struct {
	Handler string
	Params  map[string]string
}

// Router is the compiled, immutable trie for one tenant. It is built once
// and never mutated; concurrent Match calls are safe.
type Router struct {
	root *node
}

// Build groups routes by path, constructs a MethodTable per path, and
// inserts each into a new trie. It returns every ConfigError found (unknown
// method, duplicate method per path, malformed pattern, duplicate path
// insertion), combined with multierr, rather than failing on the first.
func Build(routes []RouteDescription) (*Router, error) {
	var errs error

	byPath := lo.GroupBy(routes, func(r RouteDescription) string { return r.Path })

	root := newNode()

	for path, group := range byPath {
		if path == "" || path[0] != '/' {
			errs = multierr.Append(errs, apperrors.Configf("path pattern %q must start with \"/\"", path))
			continue
		}

		table := &MethodTable{}
		tableErrs := false
		for _, r := range group {
			if err := table.Set(r.Method, r.Handler); err != nil {
				errs = multierr.Append(errs, apperrors.Configf("path %q: %v", path, err))
				tableErrs = true
			}
		}
		if tableErrs {
			continue
		}

		if err := insert(root, path, table); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if errs != nil {
		return nil, errs
	}

	return &Router{root: root}, nil
}

func splitSegments(path string) []string {
	rest := strings.TrimPrefix(path, "/")
	return strings.Split(rest, "/")
}

func insert(root *node, pattern string, table *MethodTable) error {
	segments := splitSegments(pattern)

	cur := root
	for _, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			name := seg[1:]
			if cur.param == nil {
				cur.param = newNode()
				cur.param.paramName = name
			} else if cur.param.paramName != name {
				return apperrors.Configf("path %q: conflicting parameter name %q vs %q at same position",
					pattern, name, cur.param.paramName)
			}
			cur = cur.param
			continue
		}

		child, ok := cur.children[seg]
		if !ok {
			child = newNode()
			cur.children[seg] = child
		}
		cur = child
	}

	if cur.methods != nil {
		return apperrors.Configf("path %q inserted more than once", pattern)
	}
	cur.methods = table
	cur.pattern = pattern
	return nil
}

// Match looks up (method, path) and returns the bound handler name plus any
// captured :name parameters. Static segments take precedence over param
// captures at the same trie level; a path match whose MethodTable lacks the
// requested method yields MethodNotAllowed instead of PathNotFound.
func (r *Router) Match(method Method, path string) (*Match, error) {
	segments := splitSegments(path)
	params := make(map[string]string)

	n, ok := r.root.match(segments, 0, params)
	if !ok {
		return nil, apperrors.PathNotFound(path)
	}

	handler, ok := n.methods.Get(method)
	if !ok {
		return nil, apperrors.MethodNotAllowed(string(method))
	}

	return &Match{Handler: handler, Params: params}, nil
}

func (n *node) match(segments []string, idx int, params map[string]string) (*node, bool) {
	if idx == len(segments) {
		if n.methods != nil {
			return n, true
		}
		return nil, false
	}

	seg := segments[idx]

	if child, ok := n.children[seg]; ok {
		if result, ok := child.match(segments, idx+1, params); ok {
			return result, true
		}
	}

	if n.param != nil {
		prev, had := params[n.param.paramName]
		params[n.param.paramName] = seg

		if result, ok := n.param.match(segments, idx+1, params); ok {
			return result, true
		}

		if had {
			params[n.param.paramName] = prev
		} else {
			delete(params, n.param.paramName)
		}
	}

	return nil, false
}
