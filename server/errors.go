package server

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/service/portfolio"
	"github.com/medaverse/meda-api/service/rpc"
	"github.com/medaverse/meda-api/service/score"
	"github.com/medaverse/meda-api/util"
)

// errStatus maps domain errors to HTTP statuses. Client mistakes get 4xx;
// upstream unavailability gets 503; everything else is a 500.
func errStatus(err error) int {
	var invalidAddress persist.ErrInvalidAddress
	var invalidInput util.ErrInvalidInput
	var decryptFailure score.ErrDecryptFailure
	var contractCall rpc.ErrContractCall
	var rateLimited portfolio.ErrRateLimited
	var unauthorized portfolio.ErrUnauthorized
	var transport portfolio.ErrTransport
	var upstream portfolio.ErrUpstream

	switch {
	case errors.As(err, &invalidAddress), errors.As(err, &invalidInput), errors.As(err, &decryptFailure):
		return http.StatusBadRequest
	case errors.Is(err, rpc.ErrNoHealthyEndpoint),
		errors.As(err, &contractCall),
		errors.As(err, &rateLimited),
		errors.As(err, &unauthorized),
		errors.As(err, &transport),
		errors.As(err, &upstream):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
