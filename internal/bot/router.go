package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sunrinpay/mealbot/internal/domain"
	"github.com/sunrinpay/mealbot/internal/services"
)

// Reply texts. The command keywords double as keyboard button labels, so
// they must match the keyboard sets in reply.go exactly.
const (
	cmdMenu   = "급식메뉴"
	cmdBuy    = "석식구매"
	cmdSell   = "석식판매"
	cmdSettle = "판매완료"
	cmdCancel = "취소"

	msgCancelButton = "취소"

	msgAskName  = "이름을 입력해 주세요"
	msgAskPhone = "전화번호를 입력해 주세요"
	msgAskPrice = "판매할 가격을 입력해 주세요"

	msgAlreadyListed = "이미 판매 매물을 등록하셨습니다. '판매완료' 버튼을 눌러주세요!"
	msgListed        = "성공적으로 등록되었습니다.\n판매시 \"판매완료\" 버튼을 눌러주세요"
	msgNoListing     = "판매할 석식을 등록하지 않았습니다!"
	msgSettled       = "이용해 주셔서 감사합니다."
	msgCancelled     = "취소하셨습니다."

	msgNoSellers  = "판매자가 없습니다"
	msgPickDinner = "구매하고 싶으신 석식을 눌러주세요"
	msgSellerTel  = "판매자 전화번호입니다.\n"

	msgMenuDown     = "급식 정보를 불러오지 못했습니다. 잠시 후 다시 시도해 주세요."
	msgPhoneTaken   = "이미 등록된 전화번호입니다. 다른 번호를 입력해 주세요."
	msgInvalidPrice = "가격은 숫자로 입력해 주세요"
)

// Router is the stateful dispatcher: given a user's directory state, ledger
// state, and the raw message text, it decides which operation to run and
// what reply shape to produce. All collaborators are injected.
type Router struct {
	Users    *services.DirectoryService
	Listings *services.ListingService
	Menu     *services.MenuService

	// Now returns the current time; overridable in tests. time.Now when nil.
	Now func() time.Time
}

// command handlers, keyed by exact message text. Handlers receive the
// resolved user and return the reply; free-text interpretation only runs
// when no command matches (the explicit fallthrough path).
type handlerFunc func(ctx context.Context, u *domain.User) (Response, error)

func (r *Router) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Handle processes one inbound webhook message and produces the reply.
// Domain conditions (duplicate listing, bad price, taken phone, missing
// menu) become chat replies; only storage-level failures return an error.
func (r *Router) Handle(ctx context.Context, userKey, content string) (Response, error) {
	user, err := r.Users.GetOrCreate(ctx, userKey)
	if err != nil {
		return Response{}, err
	}

	content = strings.TrimSpace(content)

	commands := map[string]handlerFunc{
		cmdMenu:   r.menuCommand,
		cmdBuy:    r.buyCommand,
		cmdSell:   r.sellCommand,
		cmdSettle: r.settleCommand,
		cmdCancel: r.cancelCommand,
	}
	if h, ok := commands[content]; ok {
		return h(ctx, user)
	}
	return r.freeText(ctx, user, content)
}

// reply renders text with the keyboard derived from the user's current
// listing state. The ledger is consulted after the operation so a reply to a
// successful listing creation already shows the seller keyboard.
func (r *Router) reply(ctx context.Context, u *domain.User, text string) (Response, error) {
	active, err := r.Listings.Active(ctx, u)
	if err != nil {
		return Response{}, err
	}
	return Reply(text, active != nil), nil
}

func (r *Router) menuCommand(ctx context.Context, u *domain.User) (Response, error) {
	text, err := r.Menu.DailyMenu(ctx, r.now())
	if err != nil {
		if errors.Is(err, services.ErrMenuUnavailable) {
			log.Warn().Err(err).Msg("menu source unavailable")
			return r.reply(ctx, u, msgMenuDown)
		}
		return Response{}, err
	}
	return r.reply(ctx, u, text)
}

func (r *Router) buyCommand(ctx context.Context, u *domain.User) (Response, error) {
	listings, err := r.Listings.Available(ctx)
	if err != nil {
		return Response{}, err
	}
	if len(listings) == 0 {
		return r.reply(ctx, u, msgNoSellers)
	}
	options := make([]string, 0, len(listings))
	for _, l := range listings {
		options = append(options, l.Label())
	}
	return ButtonList(msgPickDinner, options), nil
}

// sellCommand enters (or re-enters) the sell flow. A user who already has an
// active listing is short-circuited; otherwise the next missing profile
// field decides the prompt.
func (r *Router) sellCommand(ctx context.Context, u *domain.User) (Response, error) {
	active, err := r.Listings.Active(ctx, u)
	if err != nil {
		return Response{}, err
	}
	if active != nil {
		return Reply(msgAlreadyListed, true), nil
	}

	switch u.State {
	case domain.StateNew:
		return Prompt(msgAskName), nil
	case domain.StateAwaitingPhone:
		return Prompt(msgAskPhone), nil
	default:
		return Prompt(msgAskPrice), nil
	}
}

func (r *Router) settleCommand(ctx context.Context, u *domain.User) (Response, error) {
	if err := r.Listings.Settle(ctx, u); err != nil {
		if errors.Is(err, services.ErrNoActiveListing) {
			return r.reply(ctx, u, msgNoListing)
		}
		return Response{}, err
	}
	return r.reply(ctx, u, msgSettled)
}

func (r *Router) cancelCommand(ctx context.Context, u *domain.User) (Response, error) {
	return r.reply(ctx, u, msgCancelled)
}

// freeText is the fallthrough path for non-command text, tried in order:
// buyer claim first, then the profile state machine, then price entry.
func (r *Router) freeText(ctx context.Context, u *domain.User, content string) (Response, error) {
	if claimed, err := r.Listings.ResolveClaim(ctx, content); err != nil {
		return Response{}, err
	} else if claimed != nil {
		return r.reply(ctx, u, msgSellerTel+claimed.Owner.Phone)
	}

	switch u.State {
	case domain.StateNew:
		if err := r.Users.SetName(ctx, u, content); err != nil {
			return Response{}, err
		}
		return Prompt(msgAskPhone), nil

	case domain.StateAwaitingPhone:
		if err := r.Users.SetPhone(ctx, u, content); err != nil {
			if errors.Is(err, services.ErrPhoneTaken) {
				return Prompt(msgPhoneTaken), nil
			}
			return Response{}, err
		}
		return Prompt(msgAskPrice), nil

	default:
		return r.priceEntry(ctx, u, content)
	}
}

func (r *Router) priceEntry(ctx context.Context, u *domain.User, content string) (Response, error) {
	if _, err := r.Listings.Create(ctx, u, content); err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateListing):
			return Reply(msgAlreadyListed, true), nil
		case errors.Is(err, services.ErrInvalidPrice):
			return Prompt(msgInvalidPrice), nil
		default:
			return Response{}, err
		}
	}
	if err := r.Users.MarkReady(ctx, u); err != nil {
		return Response{}, err
	}
	return Reply(msgListed, true), nil
}
