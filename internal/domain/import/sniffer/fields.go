package sniffer

// FieldKey names a record field a sheet column can feed.
type FieldKey string

const (
	FieldRank           FieldKey = "pg"
	FieldFullName       FieldKey = "nome"
	FieldWarName        FieldKey = "nome_guerra"
	FieldNationalID     FieldKey = "cpf"
	FieldPrecedence     FieldKey = "prec"
	FieldMilitaryID     FieldKey = "idt"
	FieldBank           FieldKey = "banco"
	FieldAgency         FieldKey = "agencia"
	FieldAccount        FieldKey = "conta"
	FieldFormationYear  FieldKey = "ano"
	FieldBirthDate      FieldKey = "nasc"
	FieldEnlistmentDate FieldKey = "praca"
	FieldAddress        FieldKey = "endereco"
	FieldPostalCode     FieldKey = "cep"
	FieldPreschoolValue FieldKey = "valor_pre"
	FieldPreschoolFlag  FieldKey = "rec_pre"
	FieldTransportValue FieldKey = "valor_at"
	FieldTransportFlag  FieldKey = "rec_at"
	FieldHousing        FieldKey = "pnr"
	FieldPhoto          FieldKey = "foto"
)

// FieldSpec tells the resolver how to recognise the column of one field.
// Required lists header words of which at least one must be present; it
// keeps short generic aliases ("PRE", "AT") off unrelated columns.
type FieldSpec struct {
	Key      FieldKey
	Label    string
	Aliases  []string
	Required []string
}

// Fields is resolved in this order. A column claimed by an earlier field
// is never offered to a later one.
var Fields = []FieldSpec{
	{
		Key:      FieldRank,
		Label:    "Posto/Graduação",
		Aliases:  []string{"P G", "PG", "POSTO GRADUACAO", "POSTO E GRADUACAO", "POSTO", "GRADUACAO", "P/G"},
		Required: []string{"PG", "POSTO", "GRADUACAO"},
	},
	{
		Key:      FieldFullName,
		Label:    "Nome",
		Aliases:  []string{"NOME", "NOME COMPLETO"},
		Required: []string{"NOME"},
	},
	{
		Key:      FieldWarName,
		Label:    "Nome de Guerra",
		Aliases:  []string{"NOME DE GUERRA", "GUERRA", "NG"},
		Required: []string{"GUERRA", "NG"},
	},
	{
		Key:      FieldNationalID,
		Label:    "CPF",
		Aliases:  []string{"CPF"},
		Required: []string{"CPF"},
	},
	{
		Key:      FieldPrecedence,
		Label:    "PREC-CP",
		Aliases:  []string{"PREC", "PREC CP", "PREC-CP", "PREC CP.", "PRECCP"},
		Required: []string{"PREC", "PRECCP"},
	},
	{
		Key:      FieldMilitaryID,
		Label:    "IDT",
		Aliases:  []string{"IDT", "IDENTIDADE", "IDT MILITAR", "IDENT MILITAR", "IDENTIDADE MILITAR"},
		Required: []string{"IDT", "IDENTIDADE", "IDENT"},
	},
	{
		Key:      FieldBank,
		Label:    "Banco",
		Aliases:  []string{"BANCO"},
		Required: []string{"BANCO"},
	},
	{
		Key:      FieldAgency,
		Label:    "Agência",
		Aliases:  []string{"AGENCIA", "AGÊNCIA", "AG."},
		Required: []string{"AGENCIA", "AG"},
	},
	{
		Key:      FieldAccount,
		Label:    "Conta",
		Aliases:  []string{"CONTA", "CONTA CORRENTE", "C/C"},
		Required: []string{"CONTA", "CC"},
	},
	{
		Key:      FieldFormationYear,
		Label:    "Ano de Formação",
		Aliases:  []string{"ANO", "ANO DE FORMACAO", "ANO FORMACAO", "ANO FORM", "ANO DA FORMACAO", "ANO FORM.", "FORMACAO", "ANO FORMATURA"},
		Required: []string{"ANO", "FORMACAO", "FORM", "FORMATURA"},
	},
	{
		Key:      FieldBirthDate,
		Label:    "Data de Nascimento",
		Aliases:  []string{"DATA DE NASCIMENTO", "NASCIMENTO", "DT NASC", "DN", "DT NASCIMENTO", "ANIVERSARIO", "ANIVERSÁRIO", "DT. NASC."},
		Required: []string{"NASC", "NASCIMENTO", "DN", "ANIVERSARIO"},
	},
	{
		Key:      FieldEnlistmentDate,
		Label:    "Data de Praça",
		Aliases:  []string{"DATA DE PRACA", "DT PRACA", "PRACA", "DATA PRACA", "DATA DE PRAÇA", "DT PRAÇA"},
		Required: []string{"PRACA"},
	},
	{
		Key:      FieldAddress,
		Label:    "Endereço",
		Aliases:  []string{"ENDERECO", "ENDEREÇO"},
		Required: []string{"ENDERECO"},
	},
	{
		Key:      FieldPostalCode,
		Label:    "CEP",
		Aliases:  []string{"CEP"},
		Required: []string{"CEP"},
	},
	{
		Key:      FieldPreschoolValue,
		Label:    "Valor Pré-Escolar",
		Aliases:  []string{"VALOR PRE ESCOLAR", "PRE ESCOLAR", "VALOR PRE", "PRE"},
		Required: []string{"PRE"},
	},
	{
		Key:      FieldPreschoolFlag,
		Label:    "Recebe Pré-Escolar",
		Aliases:  []string{"RECEBE PRE ESCOLAR", "REC PRE", "PRE ESCOLAR S N", "PRE ESCOLAR SN", "PRE ESCOLAR (S/N)"},
		Required: []string{"PRE"},
	},
	{
		Key:      FieldTransportValue,
		Label:    "Valor Auxílio Transporte",
		Aliases:  []string{"VALOR AUXILIO TRANSPORTE", "VALOR AT", "AUX TRANSPORTE VALOR", "AUX TRANSPORTE (R$)", "AT (R$)", "VALOR A T", "VALOR A/T", "VALOR AUX. TRANSPORTE"},
		Required: []string{"AT", "TRANSPORTE", "AUX"},
	},
	{
		Key:      FieldTransportFlag,
		Label:    "Recebe Auxílio Transporte",
		Aliases:  []string{"AUXILIO TRANSPORTE", "AUX TRANSPORTE", "RECEBE AT", "AT S N", "AT SN", "A/T", "AUX. TRANSPORTE"},
		Required: []string{"AT", "TRANSPORTE", "AUX"},
	},
	{
		Key:      FieldHousing,
		Label:    "PNR",
		Aliases:  []string{"PNR", "POSSUI PNR", "IMOVEL FUNCIONAL", "IMÓVEL FUNCIONAL"},
		Required: []string{"PNR", "IMOVEL"},
	},
	{
		Key:      FieldPhoto,
		Label:    "Foto",
		Aliases:  []string{"FOTO", "CAMINHO FOTO", "FOTO ARQUIVO"},
		Required: []string{"FOTO"},
	},
}

// Spec returns the declaration of key.
func Spec(key FieldKey) (FieldSpec, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}
