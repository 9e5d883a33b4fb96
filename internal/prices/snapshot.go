package prices

import (
	"bytes"
	"encoding/json"
)

type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Quotes сохраняет порядок символов из конфигурации и кодируется в JSON как объект symbol -> price.
type Quotes []Quote

type Snapshot struct {
	Stocks Quotes `json:"stocks"`
	Crypto Quotes `json:"crypto"`
}

// Get возвращает цену символа; 0 - цена недоступна.
func (q Quotes) Get(symbol string) (float64, bool) {
	for _, quote := range q {
		if quote.Symbol == symbol {
			return quote.Price, true
		}
	}
	return 0, false
}

func (q Quotes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, quote := range q {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(quote.Symbol)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(quote.Price)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
