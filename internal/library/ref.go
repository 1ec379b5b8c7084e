package library

import "fmt"

// PodcastRef identifies a podcast either by its local record id or by its
// catalog (Listen Notes) id. The tag is decided by the transport layer, not
// guessed from the id's shape inside the service.
type PodcastRef struct {
	localID   uint
	catalogID string
	local     bool
}

func LocalRef(id uint) PodcastRef {
	return PodcastRef{localID: id, local: true}
}

func CatalogRef(id string) PodcastRef {
	return PodcastRef{catalogID: id}
}

func (r PodcastRef) IsLocal() bool {
	return r.local
}

func (r PodcastRef) LocalID() uint {
	return r.localID
}

func (r PodcastRef) CatalogID() string {
	return r.catalogID
}

func (r PodcastRef) String() string {
	if r.local {
		return fmt.Sprintf("local:%d", r.localID)
	}
	return "catalog:" + r.catalogID
}
