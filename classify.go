package rfqtrack

import (
	"path/filepath"
	"strings"
)

// Marker directory names recognised by ClassifyPath. Comparison ignores case.
const (
	MarkerRFQ              = "1-RFQ"
	MarkerLegacyRFQ        = "RFQ"
	MarkerSupplierQuotes   = "Supplier RFQ Quotes"
	MarkerContractorQuotes = "Contractor RFQ Quotes"
)

// Layout identifies the folder-naming convention a path matched.
type Layout string

// Layout constants.
const (
	// LayoutCurrent is {project}/1-RFQ/{Supplier|Contractor} RFQ Quotes/{partner}/...
	LayoutCurrent Layout = "current"
	// LayoutLegacy is {project}/RFQ/{partner}/...
	LayoutLegacy Layout = "legacy"
)

// Location is the structure recovered from a path below the crawl root.
// Direction is empty for a partner folder itself; FolderName is set only
// for paths inside a direction folder.
type Location struct {
	Layout        Layout      `json:"layout"`
	ProjectNumber string      `json:"projectNumber"`
	Marker        string      `json:"marker"`
	PartnerName   string      `json:"partnerName"`
	PartnerType   PartnerType `json:"partnerType"`
	Direction     Direction   `json:"direction,omitempty"`
	FolderName    string      `json:"folderName,omitempty"`
}

// IsPartner reports whether the location is a partner folder.
func (l Location) IsPartner() bool {
	return l.Direction == ""
}

// IsDirection reports whether the location is a Sent or Received folder.
func (l Location) IsDirection() bool {
	return l.Direction != "" && l.FolderName == ""
}

// layoutMatcher matches the path segments below the root against one layout.
type layoutMatcher func(segs []string) (Location, bool)

// layouts are tried in order; the first match wins.
var layouts = []layoutMatcher{
	matchCurrent,
	matchLegacy,
}

// ClassifyPath maps path, which must lie below root, to a Location. It
// reports false when the path matches none of the known layouts or stops
// above the partner level. ClassifyPath does no I/O.
func ClassifyPath(root, path string) (Location, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Location{}, false
	}
	segs := strings.Split(filepath.ToSlash(rel), "/")
	for _, match := range layouts {
		if loc, ok := match(segs); ok {
			return loc, true
		}
	}
	return Location{}, false
}

func matchCurrent(segs []string) (Location, bool) {
	if len(segs) < 4 || !strings.EqualFold(segs[1], MarkerRFQ) {
		return Location{}, false
	}

	var typ PartnerType
	switch {
	case strings.EqualFold(segs[2], MarkerSupplierQuotes):
		typ = PartnerSupplier
	case strings.EqualFold(segs[2], MarkerContractorQuotes):
		typ = PartnerContractor
	default:
		return Location{}, false
	}

	loc := Location{
		Layout:        LayoutCurrent,
		ProjectNumber: segs[0],
		Marker:        segs[2],
		PartnerName:   segs[3],
		PartnerType:   typ,
	}
	return matchTail(loc, segs[4:])
}

func matchLegacy(segs []string) (Location, bool) {
	if len(segs) < 3 || !strings.EqualFold(segs[1], MarkerLegacyRFQ) {
		return Location{}, false
	}
	loc := Location{
		Layout:        LayoutLegacy,
		ProjectNumber: segs[0],
		Marker:        segs[1],
		PartnerName:   segs[2],
		PartnerType:   PartnerSupplier,
	}
	return matchTail(loc, segs[3:])
}

// matchTail handles the optional {direction}/{folder}/... segments after the partner.
func matchTail(loc Location, tail []string) (Location, bool) {
	if loc.ProjectNumber == "" || loc.PartnerName == "" {
		return Location{}, false
	}
	if len(tail) == 0 {
		return loc, true
	}
	dir, ok := ParseDirection(tail[0])
	if !ok {
		return Location{}, false
	}
	loc.Direction = dir
	if len(tail) > 1 {
		loc.FolderName = tail[1]
	}
	return loc, true
}

// Filter holds the folder and file exclusion tags applied during a crawl.
type Filter struct {
	// FolderTags are case-insensitive substrings; a folder whose name
	// contains any of them is never visited.
	FolderTags []string `json:"folderTags"`

	// FileTags are file extensions to ignore, matched case-insensitively.
	FileTags []string `json:"fileTags"`
}

// SkipFolder reports whether a folder with the given name is excluded.
func (f Filter) SkipFolder(name string) bool {
	lower := strings.ToLower(name)
	for _, tag := range f.FolderTags {
		if tag == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}

// SkipFile reports whether a file with the given name is excluded by extension.
func (f Filter) SkipFile(name string) bool {
	lower := strings.ToLower(name)
	for _, tag := range f.FileTags {
		if tag == "" {
			continue
		}
		ext := strings.ToLower(tag)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
