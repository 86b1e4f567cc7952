package pattern

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrCatalogNotFound is returned by Load when the pattern file does not exist.
	// A run cannot start without a catalog.
	ErrCatalogNotFound = errors.New("tracking pattern file not found")

	// ErrInvalidCatalog is returned when the pattern file cannot be parsed or
	// its top level is not a mapping of service names.
	ErrInvalidCatalog = errors.New("invalid tracking pattern file")
)

// patternsKey is the key holding the rule list inside a service object.
const patternsKey = "patterns"

// ruleArity is the number of elements a rule entry must have.
const ruleArity = 3

// Rule is a single tracking pattern belonging to a service.
type Rule struct {
	// Service is the catalog key of the tracking service (e.g. "GoogleAnalytics").
	Service string `json:"service"`

	// Token is matched as a substring of cookie names.
	Token string `json:"token"`

	// FriendlyName is the human-readable tracker name (e.g. "Google Analytics").
	FriendlyName string `json:"friendlyName"`

	// Metadata is the third rule element. It is carried through but not used
	// for matching.
	Metadata string `json:"metadata,omitempty"`
}

// Matches reports whether the rule's token occurs in cookieName.
func (r Rule) Matches(cookieName string) bool {
	return strings.Contains(cookieName, r.Token)
}

// SummaryKey returns the "friendlyName (service)" key for this rule.
func (r Rule) SummaryKey() string {
	return r.FriendlyName + " (" + r.Service + ")"
}

// Service groups the rules of one tracking service in source order.
type Service struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}

// Catalog is an immutable, ordered table of tracking rules.
// It is safe for concurrent use once constructed.
type Catalog struct {
	services []Service

	// rules is the flattened (service, rule) sequence scanned by Match.
	rules []Rule

	// skipped counts malformed entries dropped while parsing.
	skipped int
}

// NewCatalog builds a catalog from services given in scan order.
// Rules with an empty token are dropped because they would match every cookie.
func NewCatalog(services ...Service) *Catalog {
	c := &Catalog{}
	for _, svc := range services {
		kept := Service{Name: svc.Name, Rules: make([]Rule, 0, len(svc.Rules))}
		for _, r := range svc.Rules {
			if r.Token == "" {
				c.skipped++
				continue
			}
			r.Service = svc.Name
			kept.Rules = append(kept.Rules, r)
			c.rules = append(c.rules, r)
		}
		c.services = append(c.services, kept)
	}
	return c
}

// Load reads and parses the pattern file at path.
// A missing file yields ErrCatalogNotFound.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided pattern path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
		}
		return nil, err
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse parses a pattern document in JSON or YAML form.
//
// Input whose first non-blank character is '{' or '[' is decoded as JSON
// and everything else as YAML. Both keep the service and rule order of the
// document. A service name given more than once keeps the position of its
// first occurrence and the rules of its last.
//
// Entries that do not have exactly three elements, whose first two elements
// are not scalars, or whose token is empty are skipped and counted in
// Skipped. Services whose value is not a mapping are skipped as well.
// A service without a "patterns" key contributes no rules.
func Parse(data []byte) (*Catalog, error) {
	root, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	// An empty document is an empty catalog
	if root == nil {
		return NewCatalog(), nil
	}

	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping of service names", ErrInvalidCatalog)
	}

	var (
		entries []serviceEntry
		index   = make(map[string]int)
		skipped int
	)

	// Mapping node content alternates key, value
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			skipped++
			continue
		}

		entry := parseService(keyNode.Value, valueNode)
		if at, dup := index[keyNode.Value]; dup {
			entries[at] = entry
			continue
		}
		index[keyNode.Value] = len(entries)
		entries = append(entries, entry)
	}

	services := make([]Service, 0, len(entries))
	for _, e := range entries {
		skipped += e.skipped
		if e.valid {
			services = append(services, e.service)
		}
	}

	c := NewCatalog(services...)
	c.skipped += skipped
	return c, nil
}

// serviceEntry is one parsed service together with its malformed entry count.
type serviceEntry struct {
	service Service
	valid   bool
	skipped int
}

// parseService parses the value of one top-level service key.
func parseService(name string, value *yaml.Node) serviceEntry {
	if value.Kind != yaml.MappingNode {
		return serviceEntry{skipped: 1}
	}

	e := serviceEntry{service: Service{Name: name}, valid: true}
	list := mappingValue(value, patternsKey)
	if list == nil || list.Kind != yaml.SequenceNode {
		return e
	}
	for _, item := range list.Content {
		rule, ok := parseRule(name, item)
		if !ok {
			e.skipped++
			continue
		}
		e.service.Rules = append(e.service.Rules, rule)
	}
	return e
}

// decodeDocument returns the root node of a JSON or YAML document, or nil
// for an empty document.
func decodeDocument(data []byte) (*yaml.Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return decodeJSON(trimmed)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

// decodeJSON builds a node tree from JSON tokens so object keys keep
// document order. JSON is decoded on its own because YAML rejects some
// valid JSON string escapes such as "\/".
func decodeJSON(data []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := jsonNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level value")
	}
	return root, nil
}

// jsonNode reads one JSON value from dec.
func jsonNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		kind := yaml.SequenceNode
		if v == '{' {
			kind = yaml.MappingNode
		}
		n := &yaml.Node{Kind: kind}
		for dec.More() {
			if kind == yaml.MappingNode {
				key, err := dec.Token()
				if err != nil {
					return nil, err
				}
				name, _ := key.(string)
				n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name})
			}
			child, err := jsonNode(dec)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		// Closing delimiter
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return n, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
	case json.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: v.String()}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}, nil
	default:
		// null
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}, nil
	}
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// parseRule converts a [token, friendlyName, metadata] sequence node.
func parseRule(service string, entry *yaml.Node) (Rule, bool) {
	if entry.Kind != yaml.SequenceNode || len(entry.Content) != ruleArity {
		return Rule{}, false
	}

	token, friendly, meta := entry.Content[0], entry.Content[1], entry.Content[2]
	if token.Kind != yaml.ScalarNode || friendly.Kind != yaml.ScalarNode {
		return Rule{}, false
	}
	if token.Value == "" {
		return Rule{}, false
	}

	r := Rule{
		Service:      service,
		Token:        token.Value,
		FriendlyName: friendly.Value,
	}
	if meta.Kind == yaml.ScalarNode {
		r.Metadata = meta.Value
	}
	return r, true
}

// Match returns the first rule whose token is a substring of cookieName.
// Services are tried in catalog order and rules in service order.
func (c *Catalog) Match(cookieName string) (Rule, bool) {
	if c == nil {
		return Rule{}, false
	}
	for _, r := range c.rules {
		if r.Matches(cookieName) {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules returns a copy of the flattened rule table in scan order.
func (c *Catalog) Rules() []Rule {
	if c == nil {
		return nil
	}
	rules := make([]Rule, len(c.rules))
	copy(rules, c.rules)
	return rules
}

// Services returns a copy of the services in catalog order.
func (c *Catalog) Services() []Service {
	if c == nil {
		return nil
	}
	services := make([]Service, len(c.services))
	for i, s := range c.services {
		services[i] = Service{Name: s.Name, Rules: append([]Rule(nil), s.Rules...)}
	}
	return services
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Skipped returns how many malformed entries were dropped while loading.
func (c *Catalog) Skipped() int {
	if c == nil {
		return 0
	}
	return c.skipped
}
