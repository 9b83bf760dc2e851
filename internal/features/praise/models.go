// Package praise реализует систему похвал: журнал, недельные лимиты
// и таблицу лидеров.
// models.go описывает структуры журнала и формат их хранения.
package praise

import (
	"encoding/json"
	"time"
)

// Praise — одна похвала. Хранится дважды: в списке given отправителя
// (заполнен ToUser) и в списке received получателя (заполнен FromUser).
// Обе копии несут одинаковые message и timestamp.
type Praise struct {
	FromUser  string    `json:"from_user,omitempty"`
	ToUser    string    `json:"to_user,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Старый бот писал timestamp через isoformat() без часового пояса.
// Такие файлы ещё живут в проде, поэтому при чтении поддерживаем
// оба варианта: RFC3339 и «наивный» ISO.
const naiveISOLayout = "2006-01-02T15:04:05.999999"

// UnmarshalJSON разбирает похвалу, принимая оба формата timestamp.
func (p *Praise) UnmarshalJSON(data []byte) error {
	var aux struct {
		FromUser  string `json:"from_user"`
		ToUser    string `json:"to_user"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	ts, err := time.Parse(time.RFC3339Nano, aux.Timestamp)
	if err != nil {
		ts, err = time.ParseInLocation(naiveISOLayout, aux.Timestamp, time.Local)
		if err != nil {
			return err
		}
	}

	p.FromUser = aux.FromUser
	p.ToUser = aux.ToUser
	p.Message = aux.Message
	p.Timestamp = ts
	return nil
}

// UserLedger — журнал одного пользователя: полученные и выданные похвалы.
// Оба списка append-only, порядок вставки сохраняется.
type UserLedger struct {
	Received []Praise `json:"received"`
	Given    []Praise `json:"given"`
}

// Empty сообщает, что журнал пуст с обеих сторон.
// Пустые журналы не сохраняются и при загрузке считаются отсутствующими.
func (l *UserLedger) Empty() bool {
	return len(l.Received) == 0 && len(l.Given) == 0
}

// UserStats — строка таблицы лидеров.
type UserStats struct {
	UserID   string
	Received int
	Given    int
	Total    int // Received + Given
}
