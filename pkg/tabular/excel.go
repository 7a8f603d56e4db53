package tabular

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/pkg/errors"
)

const (
	allDataSheet = "All Data"
	maxSheetName = 31
	defaultSheet = "Sheet1"
	statePrefix  = "State - "
	typePrefix   = "Type - "
)

var sheetNameReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")

// SheetName makes a valid worksheet name: no reserved characters, at most 31 characters
func SheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	runes := []rune(name)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	return string(runes)
}

// SheetPlan lists the worksheets of an export in order with their rows
type SheetPlan struct {
	Name     string
	Listings []*models.Listing
}

// PlanSheets groups listings into the "All Data" sheet followed by one sheet
// per known state and one per known type
func PlanSheets(listings []*models.Listing) []SheetPlan {
	plans := []SheetPlan{{Name: allDataSheet, Listings: listings}}
	used := map[string]bool{allDataSheet: true}

	for _, group := range []struct {
		field  models.Field
		prefix string
	}{
		{models.FieldState, statePrefix},
		{models.FieldType, typePrefix},
	} {
		byValue := make(map[string][]*models.Listing)
		for _, l := range listings {
			v := l.Get(group.field)
			if models.IsMissing(v) {
				continue
			}
			byValue[v] = append(byValue[v], l)
		}

		values := make([]string, 0, len(byValue))
		for v := range byValue {
			values = append(values, v)
		}
		sort.Strings(values)

		for _, v := range values {
			name := SheetName(group.prefix + v)
			if used[name] {
				continue
			}
			used[name] = true
			plans = append(plans, SheetPlan{Name: name, Listings: byValue[v]})
		}
	}

	return plans
}

// WriteXLSX writes a workbook with the sheets from PlanSheets
func WriteXLSX(ctx context.Context, path string, listings []*models.Listing) error {
	_, span := tracing.StartSpan(ctx, "tabular.WriteXLSX")
	defer span.End()

	workbook := excelize.NewFile()
	for i, plan := range PlanSheets(listings) {
		if i == 0 {
			workbook.SetSheetName(defaultSheet, plan.Name)
		} else {
			workbook.NewSheet(plan.Name)
		}

		header := models.Headers()
		workbook.SetSheetRow(plan.Name, "A1", &header)
		for r, l := range plan.Listings {
			row := l.Row()
			workbook.SetSheetRow(plan.Name, "A"+strconv.Itoa(r+2), &row)
		}
	}

	return writeAtomic(path, func(tmp *os.File) error {
		return errors.Wrap(workbook.Write(tmp), "failed to write workbook")
	})
}
