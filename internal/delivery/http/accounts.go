package http

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/utils"
	pkgerrors "github.com/s4nngr10r/tgexp/pkg/errors"
	"github.com/s4nngr10r/tgexp/pkg/httputil"
)

// AccountView is the JSON view of a loaded account
type AccountView struct {
	ID        string `json:"id"`
	Phone     string `json:"phone"`
	Name      string `json:"name,omitempty"`
	Username  string `json:"username,omitempty"`
	Connected bool   `json:"connected"`
}

// AccountsHandler serves the loaded accounts
type AccountsHandler struct {
	registry domain.AccountRegistry
	mapper   *pkgerrors.Mapper
	logger   zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler
func NewAccountsHandler(registry domain.AccountRegistry, logger zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{
		registry: registry,
		mapper:   pkgerrors.NewMapper(logger),
		logger:   logger,
	}
}

// List handles GET /accounts
func (h *AccountsHandler) List(ctx *fasthttp.RequestCtx) {
	accounts := h.registry.All()

	views := make([]AccountView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, accountView(acc))
	}
	httputil.WriteResponse(ctx, views)
}

// Get handles GET /accounts/{id}
func (h *AccountsHandler) Get(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)

	acc, ok := h.registry.Get(id)
	if !ok {
		err := pkgerrors.NewNotFoundError(fmt.Sprintf("account %q is not loaded", id))
		status, msg := h.mapper.MapErrorToHTTP(err)
		httputil.WriteErrorResponse(ctx, msg, status)
		return
	}

	httputil.WriteResponse(ctx, accountView(acc))
}

func accountView(acc *domain.Account) AccountView {
	v := AccountView{
		ID:        acc.ID,
		Phone:     utils.MaskPhoneNumber(acc.Phone),
		Connected: acc.Client.IsConnected(),
	}
	if acc.Self != nil {
		v.Name = acc.Self.DisplayName()
		v.Username = acc.Self.Username
	}
	return v
}
