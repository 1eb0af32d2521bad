package prop

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/propline/internal/domain/proptype"
	"github.com/valyala/bytebufferpool"
)

// KeyDelimiter separates conflict key parts.
const KeyDelimiter = "|"

// KeyFields is the identifying tuple of a prop line or game log.
type KeyFields struct {
	PlayerID   string
	GameID     string
	PropType   string
	Sportsbook string
	League     string
	Season     int
}

// BuildConflictKey derives the natural key used for upserts and joins. Every
// code path that writes prop lines or game logs must call this function.
func BuildConflictKey(f KeyFields) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeKeyPart(buf, strings.TrimSpace(f.PlayerID))
	writeKeyPart(buf, strings.TrimSpace(f.GameID))
	writeKeyPart(buf, proptype.NormalizeKey(f.PropType))
	writeKeyPart(buf, strings.ToLower(strings.TrimSpace(f.Sportsbook)))
	writeKeyPart(buf, strings.ToLower(strings.TrimSpace(f.League)))
	_, _ = buf.WriteString(strconv.Itoa(f.Season))

	return buf.String()
}

func writeKeyPart(buf *bytebufferpool.ByteBuffer, part string) {
	// The delimiter inside a part would make keys ambiguous.
	_, _ = buf.WriteString(strings.ReplaceAll(part, KeyDelimiter, "/"))
	_, _ = buf.WriteString(KeyDelimiter)
}
