package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/text/encoding/htmlindex"
)

// Kind tags a node of a decoded XML tree.
type Kind int

const (
	// TextLeaf is an element with no attributes and no child elements.
	TextLeaf Kind = iota
	// Element carries attributes and/or child elements plus optional text.
	Element
	// List holds repeated sibling elements sharing one name.
	List
)

func (k Kind) String() string {
	switch k {
	case TextLeaf:
		return "text"
	case Element:
		return "element"
	case List:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of a decoded XML tree. Child elements are keyed by
// name in Fields; attributes live apart from them in Attrs. Prefixed
// names keep their prefix ("dc:date").
type Value struct {
	Kind   Kind
	Name   string
	Text   string
	Attrs  map[string]string
	Fields map[string]*Value
	Items  []*Value
}

// AsList coerces any field to a slice: nil gives an empty slice, a List
// its items and anything else a one-element slice.
func AsList(v *Value) []*Value {
	switch {
	case v == nil:
		return nil
	case v.Kind == List:
		return v.Items
	default:
		return []*Value{v}
	}
}

// Field returns the named child, or nil. A List resolves through its first
// item.
func (v *Value) Field(name string) *Value {
	v = v.first()
	if v == nil || v.Fields == nil {
		return nil
	}
	return v.Fields[name]
}

// Path walks nested fields, e.g. Path("rss", "channel", "item").
func (v *Value) Path(names ...string) *Value {
	current := v
	for _, name := range names {
		current = current.Field(name)
		if current == nil {
			return nil
		}
	}
	return current
}

// String returns the direct text of the node; for a List, of its first item.
func (v *Value) String() string {
	v = v.first()
	if v == nil {
		return ""
	}
	return v.Text
}

func (v *Value) Attr(name string) string {
	v = v.first()
	if v == nil {
		return ""
	}
	return v.Attrs[name]
}

func (v *Value) first() *Value {
	if v == nil {
		return nil
	}
	if v.Kind == List {
		if len(v.Items) == 0 {
			return nil
		}
		return v.Items[0]
	}
	return v
}

func (v *Value) addChild(child *Value) {
	if v.Fields == nil {
		v.Fields = make(map[string]*Value)
	}

	existing, ok := v.Fields[child.Name]
	switch {
	case !ok:
		v.Fields[child.Name] = child
	case existing.Kind == List:
		existing.Items = append(existing.Items, child)
	default:
		v.Fields[child.Name] = &Value{
			Kind:  List,
			Name:  child.Name,
			Items: []*Value{existing, child},
		}
	}
}

type pending struct {
	node *Value
	text strings.Builder
}

func (p *pending) finish() *Value {
	p.node.Text = strings.TrimSpace(p.text.String())
	if len(p.node.Attrs) == 0 && len(p.node.Fields) == 0 {
		p.node.Kind = TextLeaf
		p.node.Attrs = nil
	}
	return p.node
}

// DecodeXML reads an XML document into a tree. The returned document node
// holds the root element as its only field. Parsing is non-strict and
// non-UTF-8 documents are decoded through their declared charset.
func DecodeXML(r io.Reader) (*Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read XML: %w", err)
	}

	parser := xpp.NewXMLPullParser(bytes.NewReader(numericEntities(data)), false, charsetReader)

	doc := &Value{Kind: Element}
	var stack []*pending

	for {
		event, err := parser.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch event {
		case xpp.StartTag:
			stack = append(stack, &pending{node: &Value{
				Kind:  Element,
				Name:  qualifiedName(parser),
				Attrs: attributes(parser),
			}})

		case xpp.Text:
			if len(stack) > 0 {
				stack[len(stack)-1].text.WriteString(parser.Text)
			}

		case xpp.EndTag:
			if len(stack) == 0 {
				return nil, errors.New("failed to parse XML: unbalanced end tag")
			}
			node := stack[len(stack)-1].finish()
			stack = stack[:len(stack)-1]

			if len(stack) == 0 {
				doc.addChild(node)
			} else {
				stack[len(stack)-1].node.addChild(node)
			}

		case xpp.EndDocument:
			if len(stack) > 0 {
				return nil, fmt.Errorf("failed to parse XML: unclosed element <%s>", stack[len(stack)-1].node.Name)
			}
			if len(doc.Fields) == 0 {
				return nil, errors.New("failed to parse XML: document has no root element")
			}
			return doc, nil
		}
	}
}

var (
	entityRef  = regexp.MustCompile(`&([A-Za-z][A-Za-z0-9]*);`)
	cdataOpen  = []byte("<![CDATA[")
	cdataClose = []byte("]]>")
)

// numericEntities rewrites HTML named entities outside CDATA sections as
// numeric character references, which the XML decoder resolves.
func numericEntities(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))

	for len(data) > 0 {
		start := bytes.Index(data, cdataOpen)
		if start < 0 {
			out.Write(entityRef.ReplaceAllFunc(data, numericRef))
			break
		}
		out.Write(entityRef.ReplaceAllFunc(data[:start], numericRef))
		data = data[start:]

		end := bytes.Index(data, cdataClose)
		if end < 0 {
			out.Write(data)
			break
		}
		end += len(cdataClose)
		out.Write(data[:end])
		data = data[end:]
	}

	return out.Bytes()
}

func numericRef(ref []byte) []byte {
	value, ok := xml.HTMLEntity[string(ref[1:len(ref)-1])]
	if !ok {
		return ref
	}

	var out []byte
	for _, r := range value {
		out = append(out, "&#"...)
		out = strconv.AppendInt(out, int64(r), 10)
		out = append(out, ';')
	}
	return out
}

func qualifiedName(parser *xpp.XMLPullParser) string {
	if parser.Space == "" {
		return parser.Name
	}
	prefix, declared := parser.Spaces[parser.Space]
	if !declared {
		// undeclared prefixes come through unresolved
		prefix = parser.Space
	}
	if prefix == "" {
		return parser.Name
	}
	return prefix + ":" + parser.Name
}

func attributes(parser *xpp.XMLPullParser) map[string]string {
	if len(parser.Attrs) == 0 {
		return nil
	}

	attrs := make(map[string]string, len(parser.Attrs))
	for _, attr := range parser.Attrs {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		attrs[attr.Name.Local] = attr.Value
	}
	return attrs
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
