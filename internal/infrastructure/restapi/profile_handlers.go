package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIProfileResponse определяет структуру ответа для эндпоинта профиля.
type APIProfileResponse struct {
	Data          *entity.ProfileSnapshot `json:"data"`
	Summary       ProfileSummary          `json:"summary"`
	StatusMessage string                  `json:"status_message"`
}

// ProfileSummary counts what a snapshot holds across all chains.
type ProfileSummary struct {
	Chains       int `json:"chains"`
	Projects     int `json:"projects"`
	WalletTokens int `json:"wallet_tokens"`
}

func summarize(snapshot *entity.ProfileSnapshot) ProfileSummary {
	summary := ProfileSummary{Chains: snapshot.Len()}
	for _, chain := range snapshot.Chains() {
		summary.Projects += len(chain.ProjectInfo)
		summary.WalletTokens += len(chain.WalletInfo.Tokens)
	}
	return summary
}

// APIChainResponse is the response of the single chain endpoint.
type APIChainResponse struct {
	Data          *entity.ChainData `json:"data"`
	StatusMessage string            `json:"status_message"`
}

// APIFailedResponse lists wallets whose last scrape failed.
type APIFailedResponse struct {
	Data struct {
		Addresses []string `json:"addresses"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// APIErrorResponse is returned with every non-2xx status.
type APIErrorResponse struct {
	Error         string `json:"error"`
	StatusMessage string `json:"status_message"`
}

// ProfileHandler обрабатывает HTTP запросы, связанные с профилями кошельков.
type ProfileHandler struct {
	profileService port.ProfileService
	logger         port.Logger
}

// NewProfileHandler создает новый экземпляр ProfileHandler.
func NewProfileHandler(ps port.ProfileService, logger port.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: ps, logger: logger}
}

// GetProfileHandler returns the snapshot of one wallet. ?refresh=true bypasses the cache.
func (h *ProfileHandler) GetProfileHandler(c *gin.Context) {
	snapshot, ok := h.fetch(c)
	if !ok {
		return
	}
	message := "Profile retrieved successfully."
	if snapshot.Len() == 0 {
		message = "Profile retrieved, but no chain could be extracted."
	}
	c.JSON(http.StatusOK, APIProfileResponse{Data: snapshot, Summary: summarize(snapshot), StatusMessage: message})
}

// GetChainHandler returns one chain of a wallet's snapshot.
func (h *ProfileHandler) GetChainHandler(c *gin.Context) {
	snapshot, ok := h.fetch(c)
	if !ok {
		return
	}
	name := c.Param("chain")
	chain, found := snapshot.Get(name)
	if !found {
		c.JSON(http.StatusNotFound, APIErrorResponse{
			Error:         "chain not found",
			StatusMessage: "Chain " + strconv.Quote(name) + " is not part of this profile.",
		})
		return
	}
	c.JSON(http.StatusOK, APIChainResponse{Data: &chain, StatusMessage: "Chain retrieved successfully."})
}

// GetFailedHandler lists wallets whose last scrape failed.
func (h *ProfileHandler) GetFailedHandler(c *gin.Context) {
	var response APIFailedResponse
	response.Data.Addresses = h.profileService.GetFailedAddresses()
	if len(response.Data.Addresses) == 0 {
		response.StatusMessage = "No failed wallets."
	} else {
		response.StatusMessage = "Wallets whose last scrape failed."
	}
	c.JSON(http.StatusOK, response)
}

func (h *ProfileHandler) fetch(c *gin.Context) (*entity.ProfileSnapshot, bool) {
	address := c.Param("address")
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))

	snapshot, err := h.profileService.FetchProfile(c.Request.Context(), address, refresh)
	if err != nil {
		status := statusOf(err)
		h.logger.Warn("Profile request failed", "address", address, "status", status, "error", err)
		c.JSON(status, APIErrorResponse{Error: err.Error(), StatusMessage: http.StatusText(status)})
		return nil, false
	}
	return snapshot, true
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrSessionUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
