// Package graphml implements a push-mode (SAX-style) GraphML parser on
// top of the standard library's encoding/xml.Decoder token stream. It
// emits typed node and link records via callbacks as the document is
// consumed, rather than building a DOM, so a caller can feed millions
// of elements through a bounded amount of state.
package graphml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"
)

const graphmlNamespace = "http://graphml.graphdrawing.org/xmlns"

// Sentinel errors, one per distinct fatal condition in the grammar.
var (
	ErrBadNamespace     = errors.New("graphml: root element is not in the graphml namespace")
	ErrDirectedEdge     = errors.New("graphml: directed edges are not supported")
	ErrMissingAttribute = errors.New("graphml: missing required attribute")
	ErrTypeMismatch     = errors.New("graphml: data value does not match declared key type")
	ErrMalformedNumber  = errors.New("graphml: malformed numeric literal")
	ErrNodesAfterEdges  = errors.New("graphml: node encountered after an edge in single-pass mode")
	ErrTwoPassOnStdin   = errors.New("graphml: two-pass mode requires a seekable source, not stdin")
	ErrUnknownKey       = errors.New("graphml: data references an undeclared key")
)

// AttrType is the declared type of a <key> element's value.
type AttrType int

const (
	TypeString AttrType = iota
	TypeNumber
	TypeInt
)

// keyDef records one <key> declaration.
type keyDef struct {
	attrName string
	attrType AttrType
	forNode  bool // true for for="node", false for for="edge"
}

// Node is the callback payload for a parsed <node>.
type Node struct {
	ID            string
	Type          string
	IsClient      bool
	PacketLoss    float64
	BandwidthUp   float64
	BandwidthDown float64
}

// Link is the callback payload for a parsed <edge>.
type Link struct {
	Source     string
	Target     string
	Latency    float64
	PacketLoss float64
	Jitter     float64
	QueueLen   int
}

// NodeFunc is invoked once per <node>, in document order.
type NodeFunc func(Node) error

// LinkFunc is invoked once per <edge>, in document order.
type LinkFunc func(Link) error

// Options configures a Driver.
type Options struct {
	// TwoPass, when true, makes Run perform a first pass delivering
	// only node events and a second delivering only edge events. r
	// must support a second read from the start (ReadSeeker), since
	// stdin cannot be re-read.
	TwoPass bool

	// ClientType, when non-empty, is compared against a node's `type`
	// attribute to decide IsClient; a node is a client iff its type
	// equals ClientType. When empty, every node defaults to client.
	ClientType string

	Logger logrus.FieldLogger
}

// Driver parses one GraphML document and invokes NodeFunc/LinkFunc per
// element, following the state machine in the state diagram: Unknown,
// Initial, TopLevel, Graph, Node, Edge, Data, with an unknown-element
// depth counter that returns to the previous state once balanced.
type Driver struct {
	opts Options
	log  logrus.FieldLogger

	keys map[string]keyDef

	dead    bool
	deadErr error
}

// New returns a Driver configured with opts.
func New(opts Options) *Driver {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Driver{opts: opts, log: opts.Logger, keys: make(map[string]keyDef)}
}

// seeker is satisfied by *os.File (os.Stdin included) and bytes.Reader;
// callers pass io.Reader and we type-assert, then probe Seek so that a
// pipe, which has the method but cannot seek, is rejected as well.
type seeker interface {
	Seek(offset int64, whence int) (int64, error)
}

// Run parses r, invoking onNode and onLink in document order. In
// two-pass mode r must implement io.Seeker (reject stdin per spec) so
// Run can rewind between passes.
func (d *Driver) Run(r io.Reader, onNode NodeFunc, onLink LinkFunc) error {
	if d.opts.TwoPass {
		sk, ok := r.(seeker)
		if !ok {
			return ErrTwoPassOnStdin
		}
		if _, err := sk.Seek(0, io.SeekCurrent); err != nil {
			return ErrTwoPassOnStdin
		}
		if err := d.runPass(r, onNode, nil); err != nil {
			return err
		}
		if _, err := sk.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("graphml: rewind for second pass: %w", err)
		}
		d.dead = false
		d.deadErr = nil
		return d.runPass(r, nil, onLink)
	}
	return d.runPass(r, onNode, onLink)
}

// parseState is one state of the SAX state machine.
type parseState int

const (
	stateInitial parseState = iota
	stateTopLevel
	stateGraph
	stateNode
	stateEdge
	stateData
	stateUnknown
)

// runPass performs one streaming pass over r. When onNode is nil, node
// events are parsed (for cross-referencing) but not delivered; when
// onLink is nil, likewise for edges. Passing both nil is invalid for a
// useful parse but harmless.
func (d *Driver) runPass(r io.Reader, onNode NodeFunc, onLink LinkFunc) error {
	dec := xml.NewDecoder(r)

	state := stateInitial
	prevState := stateInitial
	unknownDepth := 0
	sawEdgeInSinglePass := false
	graphDirected := false // <graph edgedefault="directed">

	var curNode Node
	var curLink Link
	var dataMode parseState // stateNode or stateEdge: which record Data applies to
	var curDataType AttrType
	var curDataTarget string // which field name the current <data> targets
	var dataBuf []byte

	for {
		if d.dead {
			return d.deadErr
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return d.fail(fmt.Errorf("graphml: xml token: %w", err))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch state {
			case stateInitial:
				if t.Name.Local != "graphml" {
					return d.fail(fmt.Errorf("%w: root element %q", ErrBadNamespace, t.Name.Local))
				}
				if t.Name.Space != "" && t.Name.Space != graphmlNamespace {
					return d.fail(fmt.Errorf("%w: %s", ErrBadNamespace, t.Name.Space))
				}
				state = stateTopLevel

			case stateTopLevel:
				switch t.Name.Local {
				case "key":
					kd := keyDef{}
					id := attrValue(t, "id")
					kd.attrName = attrValue(t, "attr.name")
					kd.forNode = attrValue(t, "for") == "node"
					switch attrValue(t, "attr.type") {
					case "double", "float":
						kd.attrType = TypeNumber
					case "int", "long":
						kd.attrType = TypeInt
					default:
						kd.attrType = TypeString
					}
					d.keys[id] = kd
				case "graph":
					graphDirected = attrValue(t, "edgedefault") == "directed"
					state = stateGraph
				default:
					prevState, state, unknownDepth = pushUnknown(state)
				}

			case stateGraph:
				switch t.Name.Local {
				case "node":
					id := attrValue(t, "id")
					if id == "" {
						return d.fail(fmt.Errorf("%w: node id", ErrMissingAttribute))
					}
					curNode = Node{ID: id, IsClient: d.opts.ClientType == ""}
					state = stateNode
				case "edge":
					directed := attrValue(t, "directed")
					if directed == "true" || (directed == "" && graphDirected) {
						return d.fail(fmt.Errorf("%w", ErrDirectedEdge))
					}
					src := attrValue(t, "source")
					dst := attrValue(t, "target")
					if src == "" || dst == "" {
						return d.fail(fmt.Errorf("%w: edge source/target", ErrMissingAttribute))
					}
					curLink = Link{Source: src, Target: dst}
					sawEdgeInSinglePass = true
					state = stateEdge
				default:
					prevState, state, unknownDepth = pushUnknown(state)
				}

			case stateNode:
				if t.Name.Local == "data" {
					key := attrValue(t, "key")
					kd, ok := d.keys[key]
					if !ok {
						return d.fail(fmt.Errorf("%w: %s", ErrUnknownKey, key))
					}
					curDataType = kd.attrType
					curDataTarget = kd.attrName
					dataBuf = dataBuf[:0]
					dataMode = stateNode
					state = stateData
				} else {
					prevState, state, unknownDepth = pushUnknown(state)
				}

			case stateEdge:
				if t.Name.Local == "data" {
					key := attrValue(t, "key")
					kd, ok := d.keys[key]
					if !ok {
						return d.fail(fmt.Errorf("%w: %s", ErrUnknownKey, key))
					}
					curDataType = kd.attrType
					curDataTarget = kd.attrName
					dataBuf = dataBuf[:0]
					dataMode = stateEdge
					state = stateData
				} else {
					prevState, state, unknownDepth = pushUnknown(state)
				}

			case stateData:
				prevState, state, unknownDepth = pushUnknown(state)

			case stateUnknown:
				unknownDepth++
			}

			// node-after-edge check: this must fire as soon as a
			// <node> start tag arrives while scanning single-pass and
			// an edge has already been observed.
			if !d.opts.TwoPass && t.Name.Local == "node" && sawEdgeInSinglePass {
				return d.fail(fmt.Errorf("%w: node %q", ErrNodesAfterEdges, attrValue(t, "id")))
			}

		case xml.CharData:
			if state == stateData {
				dataBuf = append(dataBuf, t...)
			}

		case xml.EndElement:
			switch state {
			case stateUnknown:
				if unknownDepth == 0 {
					state = prevState
				} else {
					unknownDepth--
				}
			case stateData:
				if err := d.applyData(&curNode, &curLink, dataMode, curDataTarget, curDataType, string(dataBuf)); err != nil {
					return d.fail(err)
				}
				state = dataMode
			case stateNode:
				if t.Name.Local == "node" {
					if onNode != nil {
						if err := onNode(curNode); err != nil {
							return d.fail(err)
						}
					}
					state = stateGraph
				}
			case stateEdge:
				if t.Name.Local == "edge" {
					if onLink != nil {
						if err := onLink(curLink); err != nil {
							return d.fail(err)
						}
					}
					state = stateGraph
				}
			case stateGraph:
				if t.Name.Local == "graph" {
					state = stateTopLevel
				}
			case stateTopLevel:
				if t.Name.Local == "graphml" {
					state = stateInitial
				}
			}
		}
	}
	return nil
}

// pushUnknown transitions into stateUnknown, remembering the state to
// return to once the unknown element's end tag balances out.
func pushUnknown(current parseState) (prev, next parseState, depth int) {
	return current, stateUnknown, 0
}

// applyData parses dataBuf per the declared type and stores it on the
// in-progress node or link record.
func (d *Driver) applyData(node *Node, link *Link, mode parseState, field string, typ AttrType, raw string) error {
	switch mode {
	case stateNode:
		switch field {
		case "type":
			node.Type = raw
			if d.opts.ClientType != "" {
				node.IsClient = raw == d.opts.ClientType
			}
		case "packetloss":
			if typ != TypeNumber {
				return fmt.Errorf("%w: packetloss", ErrTypeMismatch)
			}
			v, err := parseNumber(raw)
			if err != nil {
				return err
			}
			node.PacketLoss = v
		case "bandwidthup":
			if typ != TypeNumber {
				return fmt.Errorf("%w: bandwidthup", ErrTypeMismatch)
			}
			v, err := parseNumber(raw)
			if err != nil {
				return err
			}
			node.BandwidthUp = v
		case "bandwidthdown":
			if typ != TypeNumber {
				return fmt.Errorf("%w: bandwidthdown", ErrTypeMismatch)
			}
			v, err := parseNumber(raw)
			if err != nil {
				return err
			}
			node.BandwidthDown = v
		}
	case stateEdge:
		switch field {
		case "latency":
			if typ != TypeNumber {
				return fmt.Errorf("%w: latency", ErrTypeMismatch)
			}
			v, err := parseNumber(raw)
			if err != nil {
				return err
			}
			link.Latency = v
		case "packetloss":
			if typ != TypeNumber {
				return fmt.Errorf("%w: packetloss", ErrTypeMismatch)
			}
			v, err := parseNumber(raw)
			if err != nil {
				return err
			}
			link.PacketLoss = v
		case "jitter":
			if typ != TypeNumber {
				return fmt.Errorf("%w: jitter", ErrTypeMismatch)
			}
			v, err := parseNumber(raw)
			if err != nil {
				return err
			}
			link.Jitter = v
		case "queue_len":
			if typ != TypeInt {
				return fmt.Errorf("%w: queue_len", ErrTypeMismatch)
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrMalformedNumber, raw)
			}
			link.QueueLen = n
		}
	}
	return nil
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrMalformedNumber, raw)
	}
	return v, nil
}

// fail sets the dead flag so all subsequent events become no-ops, and
// logs the first fatal diagnostic.
func (d *Driver) fail(err error) error {
	if !d.dead {
		d.dead = true
		d.deadErr = err
		d.log.WithError(err).Error("graphml: fatal parse error")
	}
	return d.deadErr
}

func attrValue(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
