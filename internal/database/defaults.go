package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/baydesk/internal/catalog"
	"github.com/jask/baydesk/internal/database/repository"
)

// starterModels are parts models most listings in the shop reference.
var starterModels = []catalog.NewModel{
	{Name: "ThinkPad T480 Motherboard", Brand: "Lenovo", PartNumber: "01YR320", Category: "Laptop Parts"},
	{Name: "ThinkPad T480 Keyboard", Brand: "Lenovo", PartNumber: "01HX419", Category: "Laptop Parts"},
	{Name: "MacBook Pro A1708 Battery", Brand: "Apple", PartNumber: "A1713", Category: "Batteries"},
	{Name: "Dell 65W USB-C Adapter", Brand: "Dell", PartNumber: "LA65NM190", Category: "Power"},
	{Name: "iPhone 11 Display Assembly", Brand: "Apple", PartNumber: "661-13886", Category: "Phone Parts"},
	{Name: "Nintendo Switch Joy-Con Rail", Brand: "Nintendo", PartNumber: "HAC-015", Category: "Console Parts"},
}

// SeedDefaults inserts the starter models into an empty catalog. It is
// idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	models := repository.NewModelRepo(db)
	n, err := models.Count(ctx, "")
	if err != nil {
		return fmt.Errorf("count models: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, m := range starterModels {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("model:"+strings.ToLower(m.Name))).String()
		if _, err := models.Create(ctx, id, m); err != nil {
			return err
		}
	}
	return nil
}
