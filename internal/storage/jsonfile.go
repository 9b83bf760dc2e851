// Package storage — слой работы с durable-хранилищем.
// jsonfile.go читает и пишет снапшот целиком: один JSON-документ,
// замена файла атомарная (временный файл + rename), чтобы читатель
// никогда не увидел наполовину записанный снапшот.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load читает JSON-файл path в v.
// Отсутствие файла — не ошибка: возвращается os.ErrNotExist,
// вызывающий код трактует это как пустое состояние.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return os.ErrNotExist
		}
		return fmt.Errorf("чтение %s: %w", path, err)
	}

	// Пустой файл эквивалентен пустому объекту
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("разбор %s: %w", path, err)
	}
	return nil
}

// Save сериализует v и атомарно заменяет файл path.
// Сначала пишем во временный файл рядом (тот же каталог — rename
// работает только в пределах одной файловой системы), потом rename.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("временный файл в %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("запись %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("закрытие %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("замена %s: %w", path, err)
	}
	return nil
}
