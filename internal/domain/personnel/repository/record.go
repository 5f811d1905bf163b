// Package repository persists personnel records and the rank, bank and
// stipend catalogs.
package repository

import (
	"strconv"
	"strings"
)

// Benefit flag values.
const (
	Yes = "Sim"
	No  = "Não"
)

// Record is one person of the registry. Every field is stored as text;
// money values are "0" or carry two fraction digits and dates use
// dd/mm/yyyy.
type Record struct {
	ID             int64  `csv:"ID"`
	Rank           string `csv:"Posto" validate:"required"`
	FullName       string `csv:"Nome" validate:"required"`
	WarName        string `csv:"Nome de Guerra"`
	NationalID     string `csv:"CPF" validate:"omitempty,numeric,len=11"`
	PrecedenceCode string `csv:"PREC-CP" validate:"omitempty,numeric,len=9"`
	MilitaryID     string `csv:"IDT" validate:"omitempty,numeric,len=10"`
	Bank           string `csv:"Banco"`
	Agency         string `csv:"Agência"`
	Account        string `csv:"Conta"`
	Photo          string `csv:"Foto"`
	FormationYear  string `csv:"Ano de Formação" validate:"omitempty,numeric"`
	BirthDate      string `csv:"Data de Nascimento" validate:"omitempty,datetime=02/01/2006"`
	EnlistmentDate string `csv:"Data de Praça" validate:"omitempty,datetime=02/01/2006"`
	Address        string `csv:"Endereço"`
	PostalCode     string `csv:"CEP" validate:"omitempty,numeric"`
	PreschoolFlag  string `csv:"Recebe Pré Escolar" validate:"oneof=Sim Não"`
	PreschoolValue string `csv:"Valor Pré Escolar" validate:"money"`
	TransportFlag  string `csv:"Recebe Auxílio Transporte" validate:"oneof=Sim Não"`
	TransportValue string `csv:"Valor Auxílio Transporte" validate:"money"`
	HousingFlag    string `csv:"Possui PNR" validate:"oneof=Sim Não"`
}

// Columns lists the stored columns in tuple order, id excluded.
var Columns = []string{
	"rank", "full_name", "war_name", "national_id", "precedence_code",
	"military_id", "bank", "agency", "account", "photo",
	"formation_year", "birth_date", "enlistment_date", "address", "postal_code",
	"preschool_flag", "preschool_value", "transport_flag", "transport_value", "housing_flag",
}

// Headers are the column captions of exports, id first. A sheet with these
// headers imports back with every field mapped.
var Headers = []string{
	"ID", "Posto", "Nome", "Nome de Guerra", "CPF", "PREC-CP", "IDT",
	"Banco", "Agência", "Conta", "Foto", "Ano de Formação",
	"Data de Nascimento", "Data de Praça", "Endereço", "CEP",
	"Recebe Pré Escolar", "Valor Pré Escolar",
	"Recebe Auxílio Transporte", "Valor Auxílio Transporte", "Possui PNR",
}

// Values returns the stored fields in Columns order.
func (r Record) Values() []any {
	return []any{
		r.Rank, r.FullName, r.WarName, r.NationalID, r.PrecedenceCode,
		r.MilitaryID, r.Bank, r.Agency, r.Account, r.Photo,
		r.FormationYear, r.BirthDate, r.EnlistmentDate, r.Address, r.PostalCode,
		r.PreschoolFlag, r.PreschoolValue, r.TransportFlag, r.TransportValue, r.HousingFlag,
	}
}

// Row returns the id followed by the stored fields, as text.
func (r Record) Row() []string {
	row := make([]string, 0, len(Columns)+1)
	row = append(row, strconv.FormatInt(r.ID, 10))
	for _, v := range r.Values() {
		row = append(row, v.(string))
	}
	return row
}

// scanTargets returns pointers to the id and stored fields, in Row order.
func (r *Record) scanTargets() []any {
	return []any{
		&r.ID,
		&r.Rank, &r.FullName, &r.WarName, &r.NationalID, &r.PrecedenceCode,
		&r.MilitaryID, &r.Bank, &r.Agency, &r.Account, &r.Photo,
		&r.FormationYear, &r.BirthDate, &r.EnlistmentDate, &r.Address, &r.PostalCode,
		&r.PreschoolFlag, &r.PreschoolValue, &r.TransportFlag, &r.TransportValue, &r.HousingFlag,
	}
}

// ReceivesTransport reports whether the transport flag reads yes. Flags
// typed by hand ("s", "SIM") count as well.
func (r Record) ReceivesTransport() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(r.TransportFlag)), "s")
}
