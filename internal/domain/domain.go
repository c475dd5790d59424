// Package domain re-exports the entity types so callers outside the storage and
// service layers can depend on one import.
package domain

import (
	"github.com/yungbote/cashswap-backend/internal/domain/chat"
	"github.com/yungbote/cashswap-backend/internal/domain/exchange"
	"github.com/yungbote/cashswap-backend/internal/domain/user"
)

type (
	User = user.User

	MoneyKind       = exchange.MoneyKind
	ExchangeRequest = exchange.ExchangeRequest
	NewRequest      = exchange.NewRequest
	PublicRequest   = exchange.PublicRequest
	RequestFilter   = exchange.Filter
	Match           = exchange.Match

	Conversation        = chat.Conversation
	ConversationKey     = chat.Key
	Message             = chat.Message
	ConversationSummary = chat.Summary
)

const (
	KindCash    = exchange.KindCash
	KindDigital = exchange.KindDigital
)

var (
	NormalizeIdentity = chat.NormalizeIdentity
	ParseMoneyKind    = exchange.ParseMoneyKind
)
