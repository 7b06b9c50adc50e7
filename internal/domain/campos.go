package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseOpcoes merges select options given as a list and as one comma-separated string,
// trimming blanks and dropping duplicates while keeping first-seen order
func ParseOpcoes(list []string, text string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range list {
		add(s)
	}
	if text != "" {
		for _, s := range strings.Split(text, ",") {
			add(s)
		}
	}
	return out
}

// ValidateCampoValor checks a value against the field's type. Empty values are
// accepted here; required-ness is checked over the whole set by ValidateCampos.
func ValidateCampoValor(campo *CampoOS, valor string) error {
	v := strings.TrimSpace(valor)
	if v == "" {
		return nil
	}
	switch campo.Tipo {
	case CampoTipoNumero:
		if _, err := decimal.NewFromString(strings.Replace(v, ",", ".", 1)); err != nil {
			return NewValidationError(campo.Nome, "must be a number")
		}
	case CampoTipoData:
		if _, err := ParseDate(v); err != nil {
			return NewValidationError(campo.Nome, "must be a date (YYYY-MM-DD)")
		}
	case CampoTipoSelect:
		for _, o := range campo.Opcoes {
			if o == v {
				return nil
			}
		}
		return NewValidationError(campo.Nome, "is not one of the options")
	case CampoTipoCheckbox:
		if v != "true" && v != "false" {
			return NewValidationError(campo.Nome, "must be true or false")
		}
	}
	return nil
}

// ValidateCampos checks submitted values against the tenant's active fields.
// Every value must reference a known field and pass its type check; when requireAll
// is set, every required active field must carry a non-empty value.
func ValidateCampos(campos []CampoOS, valores map[string]string, requireAll bool) error {
	byID := make(map[string]*CampoOS, len(campos))
	for i := range campos {
		byID[campos[i].ID.String()] = &campos[i]
	}
	for id, valor := range valores {
		campo, ok := byID[id]
		if !ok || !campo.Ativo {
			return NewValidationError("campos", "unknown field "+id)
		}
		if err := ValidateCampoValor(campo, valor); err != nil {
			return err
		}
	}
	for i := range campos {
		c := &campos[i]
		if !c.Ativo || !c.Obrigatorio {
			continue
		}
		valor, given := valores[c.ID.String()]
		if (requireAll || given) && strings.TrimSpace(valor) == "" {
			return NewValidationError(c.Nome, "is required")
		}
	}
	return nil
}
