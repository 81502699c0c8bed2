package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/defterapp/defter-core/pkg/enums"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any query can request.
	MaxLimit = 100
)

// Params holds pagination inputs from the façade.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor marks a position inside a statement: the (date, id) pair of the last
// seen entry plus its kind, since line and payment ids come from different
// sequences.
type Cursor struct {
	Date string
	Kind enums.EntryKind
	ID   int64
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s|%d", cursor.Date, cursor.Kind, cursor.ID)
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty input
// yields a zero cursor (start of the statement). Dates are caller-supplied
// text and may contain the delimiter, so the kind and id fields split off
// from the right.
func DecodeCursor(raw string) (Cursor, error) {
	if raw == "" {
		return Cursor{}, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Cursor{}, fmt.Errorf("decoding cursor: %w", err)
	}
	payload := string(decoded)

	idSep := strings.LastIndex(payload, "|")
	if idSep < 0 {
		return Cursor{}, fmt.Errorf("malformed cursor %q", payload)
	}
	kindSep := strings.LastIndex(payload[:idSep], "|")
	if kindSep < 0 {
		return Cursor{}, fmt.Errorf("malformed cursor %q", payload)
	}

	kind, err := enums.ParseEntryKind(payload[kindSep+1 : idSep])
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor kind: %w", err)
	}

	id, err := strconv.ParseInt(payload[idSep+1:], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor id: %w", err)
	}

	return Cursor{Date: payload[:kindSep], Kind: kind, ID: id}, nil
}

// IsZero reports whether the cursor points at the start of the statement.
func (c Cursor) IsZero() bool {
	return c.Date == "" && c.Kind == "" && c.ID == 0
}
