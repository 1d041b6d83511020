// Package snapname implements the on-disk snapshot naming scheme.
//
// A snapshot of /project/index.php taken at 2025-09-06T09:30:22.151Z is
// stored next to the original as
//
//	/project/index.php.snapshot.2025-09-06T09-30-22-151Z
//
// Colons and the fractional-second dot are replaced with hyphens so the
// timestamp is filesystem-safe. Pre-revert safety copies use the distinct
// ".pre-revert-backup." marker so they are never mistaken for agent-created
// snapshots. The name alone re-associates a snapshot with its original file;
// no external index exists.
package snapname

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	SnapshotMarker  = ".snapshot."
	PreRevertMarker = ".pre-revert-backup."
)

// Kind distinguishes agent-created snapshots from pre-revert safety copies.
type Kind int

const (
	KindSnapshot Kind = iota
	KindPreRevert
)

func (k Kind) String() string {
	if k == KindPreRevert {
		return "pre-revert"
	}
	return "agent"
}

// tsLayout renders an instant in UTC with millisecond precision; the trailing
// Z is a literal since the value is always UTC.
const tsLayout = "2006-01-02T15:04:05.000Z"

// tsPattern is the single grammar for embedded timestamps. Everything that
// parses timestamps out of filenames goes through it.
var tsPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T(\d{2})-(\d{2})-(\d{2})-(\d{3})Z$`)

// FormatTimestamp renders t as the filesystem-safe timestamp segment.
func FormatTimestamp(t time.Time) string {
	s := t.UTC().Format(tsLayout)
	s = strings.ReplaceAll(s, ":", "-")
	return strings.ReplaceAll(s, ".", "-")
}

// ParseTimestamp is the inverse of FormatTimestamp.
func ParseTimestamp(seg string) (time.Time, error) {
	m := tsPattern.FindStringSubmatch(seg)
	if m == nil {
		return time.Time{}, fmt.Errorf("timestamp segment %q does not match grammar", seg)
	}
	iso := fmt.Sprintf("%sT%s:%s:%s.%sZ", m[1], m[2], m[3], m[4], m[5])
	t, err := time.Parse(tsLayout, iso)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", seg, err)
	}
	return t, nil
}

// Make returns the snapshot path for originalPath at instant t.
func Make(originalPath string, t time.Time) string {
	return originalPath + SnapshotMarker + FormatTimestamp(t)
}

// MakePreRevert returns the pre-revert safety copy path for originalPath at t.
func MakePreRevert(originalPath string, t time.Time) string {
	return originalPath + PreRevertMarker + FormatTimestamp(t)
}

// Epoch is the sort key assigned to snapshots whose timestamp segment does
// not parse: they sort as oldest possible but are still reported.
var Epoch = time.Unix(0, 0).UTC()

// Parsed is the result of decomposing a snapshot filename.
type Parsed struct {
	OriginalPath string
	Timestamp    time.Time
	Kind         Kind
	// TimestampValid is false when the trailing segment did not match the
	// grammar and Timestamp fell back to Epoch.
	TimestampValid bool
}

// Parse decomposes a snapshot path into its original path, timestamp and
// kind. ok is false when the name carries no snapshot marker at all. An
// unparsable timestamp segment yields Timestamp == Epoch with
// TimestampValid == false, never a rejection.
func Parse(snapshotPath string) (Parsed, bool) {
	base := filepath.Base(snapshotPath)
	dir := filepath.Dir(snapshotPath)

	// The later marker wins so a pre-revert copy of a file that itself
	// looks like a snapshot is classified by its outermost suffix.
	snapIdx := strings.LastIndex(base, SnapshotMarker)
	preIdx := strings.LastIndex(base, PreRevertMarker)

	kind := KindSnapshot
	idx := snapIdx
	marker := SnapshotMarker
	if preIdx > snapIdx {
		kind = KindPreRevert
		idx = preIdx
		marker = PreRevertMarker
	}
	if idx <= 0 {
		return Parsed{}, false
	}

	p := Parsed{
		OriginalPath: filepath.Join(dir, base[:idx]),
		Kind:         kind,
	}

	seg := base[idx+len(marker):]
	if ts, err := ParseTimestamp(seg); err == nil {
		p.Timestamp = ts
		p.TimestampValid = true
	} else {
		p.Timestamp = Epoch
	}
	return p, true
}

// IsSnapshotName reports whether name carries either snapshot marker.
func IsSnapshotName(name string) bool {
	return strings.Contains(name, SnapshotMarker) || strings.Contains(name, PreRevertMarker)
}
