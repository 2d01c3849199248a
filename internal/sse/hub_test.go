package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/store"
)

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	c := hub.Register("a")
	assert.Equal(t, 1, hub.ClientCount())

	hub.Broadcast(&Message{Event: "vouchers.created", Topic: "vouchers"})
	select {
	case data := <-c.Events:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "vouchers.created", msg.Event)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	hub.Unregister("a")
	assert.Equal(t, 0, hub.ClientCount())
	_, open := <-c.Events
	assert.False(t, open)
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub()
	c := hub.Register("slow")
	for i := 0; i < 100; i++ {
		hub.Broadcast(&Message{Event: "x"})
	}
	assert.Len(t, c.Events, cap(c.Events))
}

func TestAttach_ForwardsStoreEvents(t *testing.T) {
	hub := NewHub()
	c := hub.Register("admin")

	catalog := store.NewCatalogStore(store.SeedCatalogOptions())
	admin := store.NewAdminStore(store.SeedAdminOptions())
	detach := Attach(NewHubNotifier(hub, store.TopicGameAccounts), catalog, admin)

	admin.AddCategory(models.Category{Name: "Valorant", Description: "FPS", Status: models.StatusActive})
	catalog.AddGameAccount("sid", models.GameAccount{Game: "Free Fire", GameID: "1", Server: "SEA"})

	require.Len(t, c.Events, 1, "game account events are private")
	var msg Message
	require.NoError(t, json.Unmarshal(<-c.Events, &msg))
	assert.Equal(t, "categories.created", msg.Event)
	assert.Equal(t, "5", msg.ID)

	detach()
	admin.AddCategory(models.Category{Name: "Dota", Description: "MOBA", Status: models.StatusActive})
	assert.Len(t, c.Events, 0)
}
