package monitor_test

import (
	"context"
	"errors"
	"rustbot/internal/discord"
	"rustbot/internal/monitor"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(titles ...string) []*discordgo.MessageEmbed {
	result := make([]*discordgo.MessageEmbed, 0, len(titles))
	for _, title := range titles {
		result = append(result, &discordgo.MessageEmbed{Title: title})
	}
	return result
}

func TestDeleteOrphanRemovesMessageAndClearsPointer(t *testing.T) {
	messenger := newFakeMessenger("chan")
	messenger.post("chan", "live")
	store := &fakeStore{pointer: monitor.LiveMessagePointer{ChannelID: "chan", MessageID: "live"}}

	action, err := monitor.NewReconciler(messenger, store, nil).DeleteOrphan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, monitor.ActionDeleted, action)
	_, exists := messenger.message("chan", "live")
	assert.False(t, exists)
	assert.True(t, store.Pointer().IsZero())
	assert.Equal(t, 1, store.persistCount())
}

func TestDeleteOrphanToleratesMessageAlreadyGone(t *testing.T) {
	messenger := newFakeMessenger("chan")
	store := &fakeStore{pointer: monitor.LiveMessagePointer{ChannelID: "chan", MessageID: "gone"}}

	action, err := monitor.NewReconciler(messenger, store, nil).DeleteOrphan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, monitor.ActionDeleted, action)
	assert.True(t, store.Pointer().IsZero())
	assert.Equal(t, 1, store.persistCount())
}

func TestDeleteOrphanKeepsPointerOnTransientError(t *testing.T) {
	messenger := newFakeMessenger("chan")
	messenger.post("chan", "live")
	messenger.deleteErr = errors.New("gateway timeout")
	pointer := monitor.LiveMessagePointer{ChannelID: "chan", MessageID: "live"}
	store := &fakeStore{pointer: pointer}

	action, err := monitor.NewReconciler(messenger, store, nil).DeleteOrphan(context.Background())

	require.Error(t, err)
	assert.Equal(t, monitor.ActionNone, action)
	assert.Equal(t, pointer, store.Pointer())
	assert.Zero(t, store.persistCount())
}

func TestDeleteOrphanWithoutMessageDoesNothing(t *testing.T) {
	messenger := newFakeMessenger("chan")
	store := &fakeStore{pointer: monitor.LiveMessagePointer{ChannelID: "chan"}}

	action, err := monitor.NewReconciler(messenger, store, nil).DeleteOrphan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, monitor.ActionNone, action)
	assert.Equal(t, "chan", store.Pointer().ChannelID)
	assert.Zero(t, store.persistCount())
}

func TestSyncCreatesMessageWhenPointerIsStale(t *testing.T) {
	messenger := newFakeMessenger("chan")
	store := &fakeStore{pointer: monitor.LiveMessagePointer{ChannelID: "chan", MessageID: "deleted"}}

	action, err := monitor.NewReconciler(messenger, store, nil).Sync(context.Background(), cards("A", "B"))

	require.NoError(t, err)
	assert.Equal(t, monitor.ActionCreated, action)
	pointer := store.Pointer()
	assert.Equal(t, "chan", pointer.ChannelID)
	assert.Equal(t, "msg-1", pointer.MessageID)
	assert.Equal(t, 1, store.persistCount())
	posted, ok := messenger.message("chan", "msg-1")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, titles(posted))
}

func TestSyncCreatesMessageWhenOnlyChannelIsKnown(t *testing.T) {
	messenger := newFakeMessenger("chan")
	store := &fakeStore{pointer: monitor.LiveMessagePointer{ChannelID: "chan"}}

	action, err := monitor.NewReconciler(messenger, store, nil).Sync(context.Background(), cards("A"))

	require.NoError(t, err)
	assert.Equal(t, monitor.ActionCreated, action)
	assert.Equal(t, monitor.LiveMessagePointer{ChannelID: "chan", MessageID: "msg-1"}, store.Pointer())
}

func TestSyncEditsInPlaceAndIsIdempotent(t *testing.T) {
	messenger := newFakeMessenger("chan")
	messenger.post("chan", "live")
	pointer := monitor.LiveMessagePointer{ChannelID: "chan", MessageID: "live"}
	store := &fakeStore{pointer: pointer}
	reconciler := monitor.NewReconciler(messenger, store, nil)

	for i := 0; i < 2; i++ {
		action, err := reconciler.Sync(context.Background(), cards("A"))
		require.NoError(t, err)
		assert.Equal(t, monitor.ActionEdited, action)
	}

	sends, edits, _ := messenger.counts()
	assert.Zero(t, sends)
	assert.Equal(t, 2, edits)
	assert.Equal(t, 1, messenger.messageCount("chan"))
	assert.Equal(t, pointer, store.Pointer())
	assert.Zero(t, store.persistCount())
}

func TestSyncRefusesToCreateWithoutPermissions(t *testing.T) {
	messenger := newFakeMessenger("chan")
	messenger.capabilities = discord.Capabilities{CanSend: true, CanView: true}
	pointer := monitor.LiveMessagePointer{ChannelID: "chan", MessageID: "deleted"}
	store := &fakeStore{pointer: pointer}

	action, err := monitor.NewReconciler(messenger, store, nil).Sync(context.Background(), cards("A"))

	assert.ErrorIs(t, err, monitor.ErrPermissionDenied)
	assert.Equal(t, monitor.ActionNone, action)
	assert.Equal(t, pointer, store.Pointer())
	sends, _, _ := messenger.counts()
	assert.Zero(t, sends)
}

func TestSyncWithoutChannel(t *testing.T) {
	store := &fakeStore{}

	_, err := monitor.NewReconciler(newFakeMessenger(), store, nil).Sync(context.Background(), cards("A"))

	assert.ErrorIs(t, err, monitor.ErrChannelUnresolvable)
	assert.Zero(t, store.persistCount())
}

func TestSyncResetsPointerWhenChannelIsGone(t *testing.T) {
	store := &fakeStore{pointer: monitor.LiveMessagePointer{ChannelID: "deleted", MessageID: "live"}}

	_, err := monitor.NewReconciler(newFakeMessenger("other"), store, nil).Sync(context.Background(), cards("A"))

	assert.ErrorIs(t, err, monitor.ErrChannelUnresolvable)
	assert.True(t, store.Pointer().IsZero())
	assert.Equal(t, 1, store.persistCount())
}

func TestSyncKeepsPointerOnTransientChannelError(t *testing.T) {
	messenger := newFakeMessenger("chan")
	messenger.channelErr = errors.New("connection reset")
	pointer := monitor.LiveMessagePointer{ChannelID: "chan", MessageID: "live"}
	store := &fakeStore{pointer: pointer}

	_, err := monitor.NewReconciler(messenger, store, nil).Sync(context.Background(), cards("A"))

	assert.ErrorIs(t, err, monitor.ErrChannelUnresolvable)
	assert.Equal(t, pointer, store.Pointer())
}

func TestSyncKeepsNewPointerWhenPersistFails(t *testing.T) {
	messenger := newFakeMessenger("chan")
	store := &fakeStore{pointer: monitor.LiveMessagePointer{ChannelID: "chan"}, persistErr: errors.New("disk full")}

	action, err := monitor.NewReconciler(messenger, store, nil).Sync(context.Background(), cards("A"))

	require.NoError(t, err)
	assert.Equal(t, monitor.ActionCreated, action)
	assert.Equal(t, "msg-1", store.Pointer().MessageID)
}
