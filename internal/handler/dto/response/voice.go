package response

import (
	"github.com/uday68/VyaparMitra-sub000/internal/usecase/readmodel"
)

type UtteranceResponse struct {
	Result *readmodel.UtteranceRM `json:"result"`
}

func FromUtteranceRM(rm *readmodel.UtteranceRM) *UtteranceResponse {
	return &UtteranceResponse{Result: rm}
}
