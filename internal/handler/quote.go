package handler

import (
	"context"
	"errors"
	"strconv"

	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/deriverse-estimator/internal/service"
	"github.com/nulln0ne/deriverse-estimator/pkg/deriverse"
)

type QuoteHandler struct {
	BaseHandler
	service *service.QuoteService
}

func NewQuoteHandler(logger *slog.Logger, svc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type QuoteRequest struct {
	InputMint  string `query:"input_mint" json:"input_mint"`
	OutputMint string `query:"output_mint" json:"output_mint"`
	Amount     string `query:"amount" json:"amount"`
	Mode       string `query:"mode" json:"swap_mode"`
}

type QuoteResponse struct {
	InAmount  uint64 `json:"in_amount"`
	OutAmount uint64 `json:"out_amount"`
	FeeAmount uint64 `json:"fee_amount"`
	FeeMint   string `json:"fee_mint"`
	FeePct    string `json:"fee_pct"`
}

func (h *QuoteHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, err := h.parseAndValidateRequest(c)
		if err != nil {
			return err
		}

		inputMint, err := solana.PublicKeyFromBase58(req.InputMint)
		if err != nil {
			return NewInvalidMint("input")
		}
		outputMint, err := solana.PublicKeyFromBase58(req.OutputMint)
		if err != nil {
			return NewInvalidMint("output")
		}

		amount, err := h.parseAmount(req.Amount)
		if err != nil {
			return err
		}
		mode, err := h.parseMode(req.Mode)
		if err != nil {
			return err
		}

		quote, err := h.service.Quote(context.Background(), inputMint, outputMint, amount, mode)
		if err != nil {
			return h.handleServiceError(err)
		}

		h.logger.Debug("quote served", "input", req.InputMint, "output", req.OutputMint, "in", quote.InAmount, "out", quote.OutAmount)
		return c.JSON(QuoteResponse{
			InAmount:  quote.InAmount,
			OutAmount: quote.OutAmount,
			FeeAmount: quote.FeeAmount,
			FeeMint:   quote.FeeMint.String(),
			FeePct:    quote.FeePct.String(),
		})
	}
}

func (h *QuoteHandler) parseAndValidateRequest(c fiber.Ctx) (*QuoteRequest, error) {
	var req QuoteRequest

	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return nil, ErrInvalidQueryParameters
	}

	mints := map[string]string{
		"input":  req.InputMint,
		"output": req.OutputMint,
	}
	for field, mint := range mints {
		if mint == "" {
			return nil, NewMintRequired(field)
		}
	}

	if req.InputMint == req.OutputMint {
		return nil, ErrSameMints
	}

	return &req, nil
}

func (h *QuoteHandler) parseAmount(amountStr string) (uint64, error) {
	if amountStr == "" {
		return 0, ErrAmountRequired
	}

	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmountFormat
	}
	if amount == 0 {
		return 0, ErrAmountZero
	}

	return amount, nil
}

func (h *QuoteHandler) parseMode(mode string) (deriverse.SwapMode, error) {
	switch mode {
	case "", "ExactIn":
		return deriverse.ExactIn, nil
	case "ExactOut":
		return deriverse.ExactOut, nil
	default:
		return 0, ErrInvalidMode
	}
}

func (h *QuoteHandler) handleServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrSameToken):
		return ErrSameMints
	case errors.Is(err, service.ErrUnknownToken), errors.Is(err, service.ErrUnknownInstrument):
		return ErrUnknownPairNotFound
	case errors.Is(err, deriverse.ErrUnsupportedMode):
		return ErrModeUnsupportedBadRequest
	case errors.Is(err, deriverse.ErrSwapFailed):
		return ErrSwapFailedBadRequest
	case errors.Is(err, deriverse.ErrInvalidAccount):
		h.logger.Error("venue state unavailable", "err", err)
		return ErrBadAccountDataBadGateway
	default:
		h.logger.Error("service quote failed", "err", err)
		return ErrQuoteFailedInternal
	}
}
