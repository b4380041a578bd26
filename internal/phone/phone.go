// Package phone genera las variantes de un número de teléfono para la
// búsqueda laxa de pedidos. Los números llegan en formatos inconsistentes
// (con o sin indicativo, con "+", con espacios), así que la búsqueda se hace
// contra un conjunto de representaciones candidatas en lugar de igualdad
// exacta.
package phone

import "strings"

// Digits elimina todo carácter que no sea un dígito.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Candidates construye el conjunto de representaciones candidatas de un
// número: el original, solo dígitos, con/sin indicativo de país, con "+",
// y el sufijo de los últimos 10 dígitos. Entrada vacía devuelve nil.
func Candidates(raw, countryCode string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	digits := Digits(raw)
	if digits == "" {
		return nil
	}

	var candidates []string
	add := func(c string) {
		if c == "" {
			return
		}
		for _, existing := range candidates {
			if existing == c {
				return
			}
		}
		candidates = append(candidates, c)
	}

	add(raw)
	add(digits)

	if strings.HasPrefix(digits, countryCode) {
		add(strings.TrimPrefix(digits, countryCode))
		add("+" + digits)
	} else {
		add(countryCode + digits)
		add("+" + countryCode + digits)
	}

	if len(digits) > 10 {
		add(digits[len(digits)-10:])
	}

	return candidates
}

// Format normaliza un número para el envío saliente: solo dígitos, con el
// indicativo de país antepuesto cuando el número parece local (10 dígitos).
func Format(raw, countryCode string) string {
	digits := Digits(raw)
	if digits == "" {
		return ""
	}
	if len(digits) == 10 && !strings.HasPrefix(digits, countryCode) {
		return countryCode + digits
	}
	return digits
}
