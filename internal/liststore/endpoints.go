package liststore

import (
	"github.com/mmcdole/cinelist/internal/domain"
)

// endpointSet names the backend paths for one mode
type endpointSet struct {
	list        string
	add         string
	remove      string
	updateNotes string
	markWatched string
}

var (
	authenticatedEndpoints = endpointSet{
		list:        "/movies/",
		add:         "/add_movie/",
		remove:      "/delete_movie/",
		updateNotes: "/update_movie_notes/",
		markWatched: "/mark_watched/",
	}

	guestEndpoints = endpointSet{
		list:        "/movies_guest/",
		add:         "/add_movie_guest/",
		remove:      "/delete_movie_guest/",
		updateNotes: "/update_movie_notes_guest/",
		markWatched: "/mark_watched_guest/",
	}
)

// recommendPath is shared by both modes and needs no credential
const recommendPath = "/recommend/"

func endpointsFor(mode domain.Mode) endpointSet {
	if mode == domain.ModeAuthenticated {
		return authenticatedEndpoints
	}
	return guestEndpoints
}
