package appstore

import (
	"fmt"
	"time"

	"github.com/gamewatch/gamewatch/internal/listing"
)

// feedDocument mirrors the shape of the iTunes RSS JSON rendering. Only the
// fields the tracker projects are declared.
type feedDocument struct {
	Feed struct {
		Entry []feedEntry `json:"entry"`
	} `json:"feed"`
}

type feedEntry struct {
	Name struct {
		Label string `json:"label"`
	} `json:"im:name"`
	Artist struct {
		Label string `json:"label"`
	} `json:"im:artist"`
	ID struct {
		Label      string `json:"label"`
		Attributes struct {
			ID string `json:"im:id"`
		} `json:"attributes"`
	} `json:"id"`
	Category struct {
		Attributes struct {
			Label string `json:"label"`
		} `json:"attributes"`
	} `json:"category"`
	Images []struct {
		Label string `json:"label"`
	} `json:"im:image"`
	ReleaseDate struct {
		Label string `json:"label"`
	} `json:"im:releaseDate"`
}

func (e feedEntry) toListing() (listing.Listing, error) {
	if e.ID.Attributes.ID == "" {
		return listing.Listing{}, fmt.Errorf("feed entry %q has no id", e.Name.Label)
	}

	l := listing.Listing{
		ID:        e.ID.Attributes.ID,
		Title:     e.Name.Label,
		Developer: e.Artist.Label,
		URL:       e.ID.Label,
		Genre:     e.Category.Attributes.Label,
	}
	if len(e.Images) > 0 {
		// Feed images are ordered smallest to largest.
		l.IconURL = e.Images[len(e.Images)-1].Label
	}
	if e.ReleaseDate.Label != "" {
		t, err := time.Parse(time.RFC3339, e.ReleaseDate.Label)
		if err != nil {
			return listing.Listing{}, fmt.Errorf("entry %s: bad release date %q", l.ID, e.ReleaseDate.Label)
		}
		l.Released = t
	}
	return l, nil
}
