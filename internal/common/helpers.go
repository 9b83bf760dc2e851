// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: плюрализация, обрезка текста для логов, работа с временем.
package common

import (
	"fmt"
	"time"
)

// PluralizePraises возвращает правильную форму слова «praise» для числа n.
// Бот общается с пользователями по-английски, так что правило простое.
//
// Примеры:
//
//	PluralizePraises(1) → "praise"
//	PluralizePraises(3) → "praises"
func PluralizePraises(n int) string {
	if n == 1 {
		return "praise"
	}
	return "praises"
}

// Truncate обрезает текст до limit символов для логов.
// Длинные похвалы в логах не нужны целиком.
func Truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

// WeekStart возвращает начало текущей недели относительно момента now:
// ближайший прошедший понедельник, 00:00:00 в часовом поясе now.
// Граница пересчитывается на каждый вызов — кешировать её нельзя,
// иначе счётчик не обнулится в ночь на понедельник.
func WeekStart(now time.Time) time.Time {
	// time.Weekday: воскресенье = 0, понедельник = 1
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
// Используется в логах планировщика.
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatRemaining собирает строку вида "2 praises" для сообщений о лимите.
func FormatRemaining(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizePraises(n))
}
