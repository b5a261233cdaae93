package discover

import "errors"

var (
	// ErrNoSeeds is returned when Run is called without any seed URLs.
	ErrNoSeeds = errors.New("no seed urls")

	// ErrDiscoveryAborted is returned when a session is cut short by
	// cancellation or an unusable engine. The partial session accompanies
	// the error so the tree built so far stays inspectable.
	ErrDiscoveryAborted = errors.New("discovery aborted")
)
