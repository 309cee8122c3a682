package handlers

import (
	"github.com/pocketbase/pocketbase"

	"accredify/apiclient"
	"accredify/checklist"
	"accredify/session"
)

// Deps is what the console's handlers share. Client carries no token of its
// own; each request gets a copy bound to its session.
type Deps struct {
	App       *pocketbase.PocketBase
	Client    *apiclient.Client
	Sessions  *session.Manager
	Checklist *checklist.Service
}
