package entity

import "fmt"

// ContentDomain identifies which content family a counter belongs to.
type ContentDomain string

const (
	DomainPost    ContentDomain = "post"
	DomainArchive ContentDomain = "archive"
)

// AllDomains lists every domain the counter engine manages.
var AllDomains = []ContentDomain{DomainPost, DomainArchive}

// ParseContentDomain validates a raw domain string (typically a path parameter).
func ParseContentDomain(raw string) (ContentDomain, error) {
	switch ContentDomain(raw) {
	case DomainPost:
		return DomainPost, nil
	case DomainArchive:
		return DomainArchive, nil
	default:
		return "", fmt.Errorf("unknown content domain %q", raw)
	}
}

func (d ContentDomain) String() string {
	return string(d)
}
