package tui

import (
	"github.com/jask/baydesk/internal/catalog"
	"github.com/jask/baydesk/internal/modal"
)

type errMsg struct{ error }

type statusMsg string

type skusMsg []catalog.SKU

// modelsMsg answers a browser query. seq lets the browser drop stale pages.
type modelsMsg struct {
	owner modal.ID
	seq   int
	page  catalog.ModelPage
	err   error
}

type modelCreatedMsg struct {
	ticket modal.Ticket
	model  catalog.Model
	err    error
}

type skuCreatedMsg struct {
	ticket modal.Ticket
	sku    catalog.SKU
	err    error
}
