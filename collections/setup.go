package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"
)

// Sessions is the collection holding signed-in console sessions and the
// backend access token each one carries.
const Sessions = "console_sessions"

// Setup programmatically creates/ensures the collections the console keeps
// locally. Everything else lives in the accreditation backend.
func Setup(app *pocketbase.PocketBase) error {
	_, err := ensureCollection(app, Sessions, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "sid", Required: true})
		c.Fields.Add(&core.TextField{Name: "username", Required: false})
		c.Fields.Add(&core.TextField{Name: "access_token", Required: true, Hidden: true})
		c.Fields.Add(&core.DateField{Name: "expires", Required: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_console_sessions_sid", true, "sid", "")
		c.AddIndex("idx_console_sessions_expires", false, "expires", "")
	})
	return err
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		zap.L().Debug("collection already exists, skipping creation", zap.String("collection", name))
		return existing, nil
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	zap.L().Info("created collection", zap.String("collection", name), zap.String("id", collection.Id))
	return collection, nil
}
