package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a configuration document and validates it. Unknown keys
// are rejected. Parse performs no I/O; the first error found is returned.
func Parse(raw []byte) (*Config, error) {
	cfg, errs := ParseAll(raw)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return cfg, nil
}

// ParseAll is like Parse but reports every error, in document order.
// Validation rules run only once the document decodes cleanly.
func ParseAll(raw []byte) (*Config, []error) {
	root, err := decodeSingleDocument(raw)
	if err != nil {
		return nil, []error{err}
	}

	d := &decoder{}
	cfg := d.config(root)
	if len(d.errs) > 0 {
		return nil, d.errs
	}
	if errs := cfg.ValidateAll(); len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

// decodeSingleDocument returns the root node of the only document in raw,
// or nil for empty input.
func decodeSingleDocument(raw []byte) (*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, malformed("", "invalid YAML: %v", err)
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, malformed("", "invalid YAML: %v", err)
	default:
		return nil, malformed("", "multiple documents are not supported")
	}

	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, nil
		}
		return doc.Content[0], nil
	}
	return &doc, nil
}

// decoder walks the YAML node tree so that every error carries the dotted
// path of the offending field.
type decoder struct {
	errs []error
}

func (d *decoder) fail(err ValidationError) {
	d.errs = append(d.errs, err)
}

func (d *decoder) config(root *yaml.Node) *Config {
	top := d.mapping("", root, "rest", "p2p")
	return &Config{
		Rest: d.rest(top["rest"]),
		P2P:  d.p2p(top["p2p"]),
	}
}

func (d *decoder) rest(n *yaml.Node) RestConfig {
	fields := d.mapping("rest", n, "listen", "pkcs12", "cors")
	var rc RestConfig

	if v, ok := present(fields, "listen"); !ok {
		d.fail(missing("rest.listen"))
	} else if s, ok := d.str("rest.listen", v); ok {
		addr, err := ParseHostPort(s)
		if err != nil {
			d.fail(ValidationError{Kind: InvalidAddress, Path: "rest.listen", Message: err.Error(), Hint: hostPortHint})
		}
		rc.Listen = addr
	}

	if v, ok := present(fields, "pkcs12"); ok {
		if s, ok := d.str("rest.pkcs12", v); ok {
			rc.Pkcs12 = &s
		}
	}

	// A null cors value is an empty section, not an absent one.
	if v, ok := fields["cors"]; ok {
		rc.Cors = d.cors(v)
	}
	return rc
}

func (d *decoder) cors(n *yaml.Node) *CorsConfig {
	fields := d.mapping("rest.cors", n, "allowed_origins", "max_age_secs")
	cc := &CorsConfig{}

	if v, ok := present(fields, "allowed_origins"); ok {
		items := d.sequence("rest.cors.allowed_origins", v)
		cc.AllowedOrigins = make([]string, 0, len(items))
		for i, item := range items {
			if s, ok := d.str(fmt.Sprintf("rest.cors.allowed_origins[%d]", i), item); ok {
				cc.AllowedOrigins = append(cc.AllowedOrigins, s)
			}
		}
	}

	if v, ok := present(fields, "max_age_secs"); ok {
		if secs, ok := d.int("rest.cors.max_age_secs", v); ok {
			cc.MaxAgeSecs = &secs
		}
	}
	return cc
}

func (d *decoder) p2p(n *yaml.Node) P2PConfig {
	fields := d.mapping("p2p", n, "trusted_peers", "public_id", "public_address", "topics_of_interest")
	pc := P2PConfig{TrustedPeers: []Address{}}

	if v, ok := present(fields, "trusted_peers"); ok {
		for i, item := range d.sequence("p2p.trusted_peers", v) {
			path := fmt.Sprintf("p2p.trusted_peers[%d]", i)
			s, ok := d.str(path, item)
			if !ok {
				continue
			}
			addr, err := ParseAddress(s)
			if err != nil {
				d.fail(ValidationError{Kind: InvalidAddress, Path: path, Message: err.Error(), Hint: p2pAddrHint})
				continue
			}
			pc.TrustedPeers = append(pc.TrustedPeers, addr)
		}
	}

	if v, ok := present(fields, "public_id"); ok {
		if s, ok := d.str("p2p.public_id", v); ok {
			pc.PublicID = &s
		}
	}

	if v, ok := present(fields, "public_address"); !ok {
		d.fail(missing("p2p.public_address"))
	} else if s, ok := d.str("p2p.public_address", v); ok {
		addr, err := ParseAddress(s)
		if err != nil {
			d.fail(ValidationError{Kind: InvalidAddress, Path: "p2p.public_address", Message: err.Error(), Hint: p2pAddrHint})
		}
		pc.PublicAddress = addr
	}

	if v, ok := present(fields, "topics_of_interest"); !ok {
		d.fail(missing("p2p.topics_of_interest"))
	} else {
		topics := d.mapping("p2p.topics_of_interest", v, "messages", "blocks")
		pc.TopicsOfInterest.Messages = d.level("p2p.topics_of_interest.messages", topics)
		pc.TopicsOfInterest.Blocks = d.level("p2p.topics_of_interest.blocks", topics)
	}
	return pc
}

func (d *decoder) level(path string, fields map[string]*yaml.Node) InterestLevel {
	name := path[strings.LastIndexByte(path, '.')+1:]
	v, ok := present(fields, name)
	if !ok {
		d.fail(missing(path))
		return 0
	}
	s, ok := d.str(path, v)
	if !ok {
		return 0
	}
	level, err := ParseInterestLevel(s)
	if err != nil {
		d.fail(ValidationError{
			Kind:    InvalidEnumValue,
			Path:    path,
			Message: fmt.Sprintf("invalid value %q", s),
			Hint:    interestHint,
		})
		return 0
	}
	return level
}

// mapping returns the children of a mapping node by key. A nil or null
// node yields an empty map. Unknown and duplicate keys are errors.
func (d *decoder) mapping(path string, n *yaml.Node, known ...string) map[string]*yaml.Node {
	fields := make(map[string]*yaml.Node, len(known))
	n = resolve(n)
	if n == nil || isNull(n) {
		return fields
	}
	if n.Kind != yaml.MappingNode {
		d.fail(malformed(path, "expected a mapping, got %s", kindName(n)))
		return fields
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := resolve(n.Content[i]), n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			d.fail(malformed(path, "mapping keys must be scalars (line %d)", key.Line))
			continue
		}
		child := joinPath(path, key.Value)
		if !contains(known, key.Value) {
			d.fail(ValidationError{
				Kind:    MalformedDocument,
				Path:    child,
				Message: "unknown field",
				Hint:    "allowed fields: " + strings.Join(known, ", "),
			})
			continue
		}
		if _, dup := fields[key.Value]; dup {
			d.fail(malformed(child, "duplicate field (line %d)", key.Line))
			continue
		}
		fields[key.Value] = val
	}
	return fields
}

func (d *decoder) sequence(path string, n *yaml.Node) []*yaml.Node {
	n = resolve(n)
	if n.Kind != yaml.SequenceNode {
		d.fail(malformed(path, "expected a sequence, got %s", kindName(n)))
		return nil
	}
	return n.Content
}

func (d *decoder) str(path string, n *yaml.Node) (string, bool) {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode || isNull(n) {
		d.fail(malformed(path, "expected a string, got %s", kindName(n)))
		return "", false
	}
	return n.Value, true
}

func (d *decoder) int(path string, n *yaml.Node) (int64, bool) {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!int" {
		d.fail(malformed(path, "expected an integer, got %s", kindName(n)))
		return 0, false
	}
	var v int64
	if err := n.Decode(&v); err != nil {
		d.fail(malformed(path, "expected an integer: %v", err))
		return 0, false
	}
	return v, true
}

// present looks up a field, treating an explicit null as absent.
func present(fields map[string]*yaml.Node, name string) (*yaml.Node, bool) {
	n, ok := fields[name]
	if !ok || isNull(resolve(n)) {
		return nil, false
	}
	return n, true
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		if isNull(n) {
			return "null"
		}
		return fmt.Sprintf("%s %q", strings.TrimPrefix(n.ShortTag(), "!!"), n.Value)
	default:
		return "an unsupported node"
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
