package stations

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/mirs/station-backend/pkg/errors"
)

// GenericPrefix is used when no profile names the station type.
const GenericPrefix = "STN"

const dateLayout = "060102"

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// GenerateID builds PREFIX-ORG-YYMMDD-xxxx. The org segment is dropped when
// orgCode is empty and a random suffix is used when suffix is empty.
func GenerateID(prefix, orgCode string, now time.Time, suffix string) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = GenericPrefix
	}
	if suffix = strings.ToLower(strings.TrimSpace(suffix)); suffix == "" {
		suffix = strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	}

	parts := []string{prefix}
	if org := strings.ToUpper(strings.TrimSpace(orgCode)); org != "" {
		parts = append(parts, org)
	}
	parts = append(parts, now.UTC().Format(dateLayout), suffix)
	return strings.Join(parts, "-")
}

// ParsedID is a station id split into its segments. Date is empty for the
// legacy PREFIX-ORG-NN form, where Suffix holds the sequence number.
type ParsedID struct {
	Prefix string
	Org    string
	Date   string
	Suffix string
}

// ParseID accepts PREFIX-ORG-YYMMDD-xxxx, PREFIX-YYMMDD-xxxx and the legacy
// PREFIX-ORG-NN.
func ParseID(id string) (*ParsedID, error) {
	parts := strings.Split(strings.TrimSpace(id), "-")
	for _, part := range parts {
		if !segmentPattern.MatchString(part) {
			return nil, invalidID(id, "segments must be non-empty and alphanumeric")
		}
	}

	switch len(parts) {
	case 4:
		if !isDate(parts[2]) {
			return nil, invalidID(id, "third segment must be a YYMMDD date")
		}
		return &ParsedID{Prefix: parts[0], Org: parts[1], Date: parts[2], Suffix: parts[3]}, nil
	case 3:
		if isDate(parts[1]) {
			return &ParsedID{Prefix: parts[0], Date: parts[1], Suffix: parts[2]}, nil
		}
		return &ParsedID{Prefix: parts[0], Org: parts[1], Suffix: parts[2]}, nil
	default:
		return nil, invalidID(id, "expected PREFIX-ORG-YYMMDD-xxxx")
	}
}

// DisplayName renders "<id> <name>", preferring the custom name over the
// station type name. It is the bare id when neither is known.
func DisplayName(id, custom, typeName string) string {
	if custom = strings.TrimSpace(custom); custom != "" {
		return id + " " + custom
	}
	if typeName = strings.TrimSpace(typeName); typeName != "" {
		return id + " " + typeName
	}
	return id
}

func isDate(segment string) bool {
	if len(segment) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, segment)
	return err == nil
}

func invalidID(id, reason string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid station id: "+reason).
		WithDetails(map[string]any{"station_id": id})
}
