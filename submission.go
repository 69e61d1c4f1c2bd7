package rfqtrack

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Direction tells whether a submission was sent to or received from a partner.
type Direction string

// Direction constants.
const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// ParseDirection maps a direction folder name to a Direction, ignoring case.
// The "Recieved" misspelling found on older shares is accepted.
func ParseDirection(name string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sent":
		return DirectionSent, true
	case "received", "recieved":
		return DirectionReceived, true
	}
	return "", false
}

// Submission is one version of a sent or received event folder.
type Submission struct {
	ID            string      `json:"id"`
	ProjectNumber string      `json:"projectNumber"`
	PartnerName   string      `json:"partnerName"`
	PartnerType   PartnerType `json:"partnerType"`
	Direction     Direction   `json:"direction"`
	FolderName    string      `json:"folderName"`
	FolderPath    string      `json:"folderPath"`
	Date          time.Time   `json:"date"`
	Files         []string    `json:"files"`
	ContentHash   string      `json:"contentHash"`
	FirstSeen     time.Time   `json:"firstSeen"`
	LastChecked   time.Time   `json:"lastChecked"`
}

// Validate returns an error if the submission contains invalid fields.
func (s *Submission) Validate() error {
	if s.ProjectNumber == "" {
		return Errorf(EINVALID, "submission project number required")
	}
	if s.PartnerName == "" {
		return Errorf(EINVALID, "submission partner name required")
	}
	if s.FolderName == "" {
		return Errorf(EINVALID, "submission folder name required")
	}
	if s.ContentHash == "" {
		return Errorf(EINVALID, "submission content hash required")
	}
	if s.Direction != DirectionSent && s.Direction != DirectionReceived {
		return Errorf(EINVALID, "invalid submission direction %q", s.Direction)
	}
	return nil
}

// Reconcile is the outcome of reconciling a scanned submission with storage.
type Reconcile int

const (
	// ReconcileInserted means the content hash was new and a version was added.
	ReconcileInserted Reconcile = iota + 1
	// ReconcileUnchanged means the version already existed; only its
	// last-checked time was refreshed.
	ReconcileUnchanged
)

// SubmissionService represents a service for managing submission versions.
type SubmissionService interface {
	// ReconcileSubmission stores sub as a new version unless a version with the
	// same project, partner, folder name and content hash exists, in which case
	// only that version's LastChecked is set to checkedAt.
	ReconcileSubmission(ctx context.Context, sub *Submission, checkedAt time.Time) (Reconcile, error)

	// FindSubmissions retrieves submissions matching the filter, newest first.
	FindSubmissions(ctx context.Context, filter SubmissionFilter) ([]*Submission, error)
}

// SubmissionFilter represents a filter for FindSubmissions.
type SubmissionFilter struct {
	ID            *string      `json:"id"`
	ProjectNumber *string      `json:"projectNumber"`
	PartnerName   *string      `json:"partnerName"`
	PartnerType   *PartnerType `json:"partnerType"`
	Direction     *Direction   `json:"direction"`
	FolderName    *string      `json:"folderName"`
}

// VersionHistory is the set of versions of one event folder, newest first.
type VersionHistory struct {
	FolderName string        `json:"folderName"`
	Versions   []*Submission `json:"versions"`
}

// Latest returns the newest version.
func (h *VersionHistory) Latest() *Submission {
	if len(h.Versions) == 0 {
		return nil
	}
	return h.Versions[0]
}

// GroupVersions groups submissions by folder name. Versions within a group
// are ordered by date descending, then by first-seen time descending since
// versions of the same folder share its creation time. Groups are ordered by
// their newest version, then by folder name.
func GroupVersions(subs []*Submission) []*VersionHistory {
	byName := make(map[string]*VersionHistory)
	var histories []*VersionHistory
	for _, s := range subs {
		h, ok := byName[s.FolderName]
		if !ok {
			h = &VersionHistory{FolderName: s.FolderName}
			byName[s.FolderName] = h
			histories = append(histories, h)
		}
		h.Versions = append(h.Versions, s)
	}

	for _, h := range histories {
		sort.SliceStable(h.Versions, func(i, j int) bool {
			return newerThan(h.Versions[i], h.Versions[j])
		})
	}
	sort.SliceStable(histories, func(i, j int) bool {
		a, b := histories[i].Latest(), histories[j].Latest()
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return histories[i].FolderName < histories[j].FolderName
	})
	return histories
}

func newerThan(a, b *Submission) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.FirstSeen.After(b.FirstSeen)
}

// SubmissionHistory holds a partner's submissions split by direction.
type SubmissionHistory struct {
	ProjectNumber string            `json:"projectNumber"`
	PartnerName   string            `json:"partnerName"`
	Sent          []*VersionHistory `json:"sent"`
	Received      []*VersionHistory `json:"received"`
}
