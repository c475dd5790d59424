package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cashswap-backend/internal/data/repos/testutil"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
)

func TestMessageRepoUnreadAccounting(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	convs := NewConversationRepo(db, testutil.Logger(t))
	msgs := NewMessageRepo(db, testutil.Logger(t))

	conv, err := convs.GetOrCreate(dbc, "john@college.edu", "jane@college.edu", uuid.New())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	base := time.Now().UTC()
	const n = 4
	for i := 0; i < n; i++ {
		if _, err := msgs.Append(dbc, conv.ID, "jane@college.edu", "ping", base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if _, err := msgs.Append(dbc, conv.ID, "john@college.edu", "pong", base.Add(10*time.Second)); err != nil {
		t.Fatalf("Append own: %v", err)
	}

	unread, err := msgs.UnreadCount(dbc, conv.ID, "john@college.edu")
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != n {
		t.Fatalf("expected %d unread for john, got %d", n, unread)
	}

	flipped, err := msgs.MarkRead(dbc, conv.ID, "john@college.edu")
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if flipped != n {
		t.Fatalf("expected %d flipped, got %d", n, flipped)
	}
	if unread, _ = msgs.UnreadCount(dbc, conv.ID, "john@college.edu"); unread != 0 {
		t.Fatalf("expected 0 unread after MarkRead, got %d", unread)
	}
	if flipped, _ = msgs.MarkRead(dbc, conv.ID, "john@college.edu"); flipped != 0 {
		t.Fatalf("MarkRead should be idempotent, flipped %d", flipped)
	}
	// john's own message is still unread for jane.
	if unread, _ = msgs.UnreadCount(dbc, conv.ID, "jane@college.edu"); unread != 1 {
		t.Fatalf("expected 1 unread for jane, got %d", unread)
	}
}

func TestMessageRepoOrderingAndLastMessageAt(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	convs := NewConversationRepo(db, testutil.Logger(t))
	msgs := NewMessageRepo(db, testutil.Logger(t))

	conv, err := convs.GetOrCreate(dbc, "john@college.edu", "jane@college.edu", uuid.New())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	base := time.Now().UTC().Truncate(time.Millisecond).Add(time.Minute)
	stamps := []time.Duration{3 * time.Second, time.Second, 2 * time.Second}
	var last time.Time
	for _, d := range stamps {
		at := base.Add(d)
		if _, err := msgs.Append(dbc, conv.ID, "jane@college.edu", d.String(), at); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if at.After(last) {
			last = at
		}
	}

	list, err := msgs.ListFor(dbc, conv.ID)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(list) != len(stamps) {
		t.Fatalf("expected %d messages, got %d", len(stamps), len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Timestamp.Before(list[i-1].Timestamp) {
			t.Fatalf("messages out of order at %d", i)
		}
	}

	latest, err := msgs.Latest(dbc, conv.ID)
	if err != nil || latest == nil || latest.Content != "3s" {
		t.Fatalf("unexpected latest %+v %v", latest, err)
	}

	got, err := convs.GetByID(dbc, conv.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	if !got.LastMessageAt.Equal(last) {
		t.Fatalf("last_message_at=%v want %v", got.LastMessageAt, last)
	}
}
