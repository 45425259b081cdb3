package mapper

import (
	"github.com/vibast-solutions/ms-go-invoicing/app/provider"
	"github.com/vibast-solutions/ms-go-invoicing/app/service"
	"github.com/vibast-solutions/ms-go-invoicing/app/types"
)

func InvoiceStateToResponse(state *service.InvoiceState) *types.InvoiceStateResponse {
	if state == nil {
		return nil
	}

	return &types.InvoiceStateResponse{
		PaymentId:  state.PaymentID,
		InvoiceId:  state.InvoiceID,
		InvoiceUrl: state.InvoiceURL,
		Stage:      state.Stage(),
	}
}

// CountriesToResponse lists countries ordered by name.
func CountriesToResponse(countries provider.CountryList) *types.CountriesResponse {
	sorted := countries.Sorted()
	result := make([]*types.Country, 0, len(sorted))
	for _, item := range sorted {
		result = append(result, &types.Country{Code: item.Code, Name: item.Name})
	}
	return &types.CountriesResponse{Countries: result}
}
