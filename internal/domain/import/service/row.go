package service

import (
	"strings"
	"time"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/sniffer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// RawRow holds the cells of one data row, one per field. Fields without a
// mapped column hold an empty cell.
type RawRow struct {
	Rank           normalizer.Cell
	FullName       normalizer.Cell
	WarName        normalizer.Cell
	NationalID     normalizer.Cell
	PrecedenceCode normalizer.Cell
	MilitaryID     normalizer.Cell
	Bank           normalizer.Cell
	Agency         normalizer.Cell
	Account        normalizer.Cell
	FormationYear  normalizer.Cell
	BirthDate      normalizer.Cell
	EnlistmentDate normalizer.Cell
	Address        normalizer.Cell
	PostalCode     normalizer.Cell
	PreschoolValue normalizer.Cell
	PreschoolFlag  normalizer.Cell
	TransportValue normalizer.Cell
	TransportFlag  normalizer.Cell
	HousingFlag    normalizer.Cell
	Photo          normalizer.Cell
}

func extractRow(cm sniffer.ColumnMap, row []normalizer.Cell) RawRow {
	return RawRow{
		Rank:           cm.Cell(row, sniffer.FieldRank),
		FullName:       cm.Cell(row, sniffer.FieldFullName),
		WarName:        cm.Cell(row, sniffer.FieldWarName),
		NationalID:     cm.Cell(row, sniffer.FieldNationalID),
		PrecedenceCode: cm.Cell(row, sniffer.FieldPrecedence),
		MilitaryID:     cm.Cell(row, sniffer.FieldMilitaryID),
		Bank:           cm.Cell(row, sniffer.FieldBank),
		Agency:         cm.Cell(row, sniffer.FieldAgency),
		Account:        cm.Cell(row, sniffer.FieldAccount),
		FormationYear:  cm.Cell(row, sniffer.FieldFormationYear),
		BirthDate:      cm.Cell(row, sniffer.FieldBirthDate),
		EnlistmentDate: cm.Cell(row, sniffer.FieldEnlistmentDate),
		Address:        cm.Cell(row, sniffer.FieldAddress),
		PostalCode:     cm.Cell(row, sniffer.FieldPostalCode),
		PreschoolValue: cm.Cell(row, sniffer.FieldPreschoolValue),
		PreschoolFlag:  cm.Cell(row, sniffer.FieldPreschoolFlag),
		TransportValue: cm.Cell(row, sniffer.FieldTransportValue),
		TransportFlag:  cm.Cell(row, sniffer.FieldTransportFlag),
		HousingFlag:    cm.Cell(row, sniffer.FieldHousing),
		Photo:          cm.Cell(row, sniffer.FieldPhoto),
	}
}

// normalizeRow converts a raw row into canonical values and applies the
// benefit rules. HousingFlag stays "" when the sheet does not say.
func normalizeRow(raw RawRow, epoch time.Time) repository.Record {
	fullName := normalizer.Clean(raw.FullName)

	rec := repository.Record{
		Rank:           normalizer.ExpandRank(normalizer.Clean(raw.Rank)),
		FullName:       strings.ToUpper(fullName),
		WarName:        normalizer.Clean(raw.WarName),
		NationalID:     normalizer.DigitsOnly(raw.NationalID),
		PrecedenceCode: normalizer.DigitsOnly(raw.PrecedenceCode),
		MilitaryID:     normalizer.DigitsOnly(raw.MilitaryID),
		Bank:           normalizer.Clean(raw.Bank),
		Agency:         normalizer.Clean(raw.Agency),
		Account:        normalizer.Clean(raw.Account),
		Photo:          normalizer.Clean(raw.Photo),
		FormationYear:  normalizer.Year(raw.FormationYear),
		BirthDate:      normalizer.Date(raw.BirthDate, epoch),
		EnlistmentDate: normalizer.Date(raw.EnlistmentDate, epoch),
		Address:        normalizer.Clean(raw.Address),
		PostalCode:     normalizer.DigitsOnly(raw.PostalCode),
		HousingFlag:    normalizer.YesNo(raw.HousingFlag),
	}
	if rec.WarName == "" {
		rec.WarName = normalizer.FirstGivenName(fullName)
	}

	rec.PreschoolFlag, rec.PreschoolValue = preschool(normalizer.YesNo(raw.PreschoolFlag), normalizer.Money(raw.PreschoolValue))
	rec.TransportFlag, rec.TransportValue = transport(raw.TransportFlag, normalizer.Money(raw.TransportValue))

	return rec
}

// preschool settles the preschool flag and value. An explicit "Não" zeroes
// the value; an undetermined flag follows the value.
func preschool(flag, value string) (string, string) {
	switch flag {
	case normalizer.No:
		return normalizer.No, "0"
	case normalizer.Yes:
		if normalizer.IsZeroMoney(value) {
			value = "0"
		}
		return normalizer.Yes, value
	default:
		if normalizer.IsZeroMoney(value) {
			return normalizer.No, "0"
		}
		return normalizer.Yes, value
	}
}

// transport settles the transport flag from the value alone, except that an
// "X" in the flag column cancels the benefit whatever the value says.
func transport(flagCell normalizer.Cell, value string) (string, string) {
	if strings.EqualFold(normalizer.Clean(flagCell), "X") {
		return normalizer.No, "0"
	}
	if normalizer.IsZeroMoney(value) {
		return normalizer.No, "0"
	}
	return normalizer.Yes, value
}

// pick keeps the imported value unless it is blank.
func pick(newValue, oldValue string) string {
	if v := strings.TrimSpace(newValue); v != "" {
		return v
	}
	return strings.TrimSpace(oldValue)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// merge combines a stored record with an imported row. Imported values win
// when present. normalizeRow always settles the preschool and transport
// pairs, so both come from the row as they are.
func merge(old, row repository.Record) repository.Record {
	return repository.Record{
		ID:             old.ID,
		Rank:           pick(row.Rank, old.Rank),
		FullName:       pick(row.FullName, old.FullName),
		WarName:        pick(row.WarName, old.WarName),
		NationalID:     pick(row.NationalID, old.NationalID),
		PrecedenceCode: pick(row.PrecedenceCode, old.PrecedenceCode),
		MilitaryID:     pick(row.MilitaryID, old.MilitaryID),
		Bank:           pick(row.Bank, old.Bank),
		Agency:         pick(row.Agency, old.Agency),
		Account:        pick(row.Account, old.Account),
		Photo:          pick(row.Photo, old.Photo),
		FormationYear:  pick(row.FormationYear, old.FormationYear),
		BirthDate:      pick(row.BirthDate, old.BirthDate),
		EnlistmentDate: pick(row.EnlistmentDate, old.EnlistmentDate),
		Address:        pick(row.Address, old.Address),
		PostalCode:     pick(row.PostalCode, old.PostalCode),
		PreschoolFlag:  row.PreschoolFlag,
		PreschoolValue: row.PreschoolValue,
		TransportFlag:  row.TransportFlag,
		TransportValue: row.TransportValue,
		HousingFlag:    firstNonEmpty(row.HousingFlag, old.HousingFlag, normalizer.No),
	}
}

// newRecord builds the record inserted for an unmatched row.
func newRecord(row repository.Record) repository.Record {
	row.ID = 0
	row.HousingFlag = firstNonEmpty(row.HousingFlag, normalizer.No)
	return row
}
