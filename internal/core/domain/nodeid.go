package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	typePrefixContent   = "TYPE_"
	typePrefixComponent = "COMPONENT_"
)

// NodeTypeName returns the node type tag for a schema.
//
// Collection and single types map to TYPE_<singularName>, components map to
// COMPONENT_<uid>, both uppercased with every non-alphanumeric rune replaced
// by an underscore. The normaliser and the reconciliation engine must both
// use this function; any divergence silently breaks deletion detection.
func NodeTypeName(s *Schema) string {
	if s == nil {
		return ""
	}
	if s.Kind == SchemaKindComponent {
		return typePrefixComponent + normalizeTypeToken(s.UID)
	}
	return typePrefixContent + normalizeTypeToken(s.SingularName)
}

// TextNodeType returns the type tag of the rich-text child for attr.
func TextNodeType(parentType, attr string) string {
	return parentType + "_" + normalizeTypeToken(attr) + "_TEXT"
}

// JSONNodeType returns the type tag of the JSON child for attr.
func JSONNodeType(parentType, attr string) string {
	return parentType + "_" + normalizeTypeToken(attr) + "_JSON"
}

func normalizeTypeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// IDSpace derives deterministic node ids within one source.
// Two sources never derive the same id.
type IDSpace struct {
	ns uuid.UUID
}

// NewIDSpace returns the id space of the named source.
func NewIDSpace(source string) IDSpace {
	return IDSpace{ns: uuid.NewSHA1(uuid.NameSpaceURL, []byte("strapisync://"+source))}
}

// Derive returns the id for the given identity parts.
func (s IDSpace) Derive(parts ...string) string {
	return uuid.NewSHA1(s.ns, []byte(strings.Join(parts, "\x1f"))).String()
}

// Entity returns the id of the node mirroring upstream record sourceID of typeName.
func (s IDSpace) Entity(typeName string, sourceID int64) string {
	return s.Derive(typeName, strconv.FormatInt(sourceID, 10))
}

// Child returns the id of a synthetic child of parentID for attr.
// Suffix distinguishes child flavours, e.g. "Text" or "JSON".
func (s IDSpace) Child(parentID, attr, suffix string) string {
	return s.Derive(parentID, attr, suffix)
}

// ContentDigest fingerprints a content payload. Map keys are marshalled in
// sorted order so equal payloads always produce equal digests.
func ContentDigest(content any) string {
	data, err := json.Marshal(content)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
