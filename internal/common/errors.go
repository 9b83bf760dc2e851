// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки валидации команды /hloppy
var (
	// ErrNoMentions — в тексте команды не нашлось ни одного валидного упоминания
	ErrNoMentions = errors.New("no valid mentions in command text")
	// ErrEmptyMessage — после упоминаний нет текста похвалы
	ErrEmptyMessage = errors.New("praise message is empty")
	// ErrWeeklyLimit — недельный лимит похвал исчерпан
	ErrWeeklyLimit = errors.New("weekly praise limit reached")
	// ErrTooManyMentions — упомянуто больше людей, чем осталось похвал на неделе
	ErrTooManyMentions = errors.New("more mentions than praises remaining this week")
)

// Ошибки хранилища
var (
	// ErrSnapshotMalformed — файл снапшота существует, но не парсится.
	// Хранилище при этом деградирует до пустого состояния, ошибка только логируется.
	ErrSnapshotMalformed = errors.New("snapshot file is malformed")
)
