// Package fuzztests houses Go fuzz harnesses that push arbitrary bytes through
// the formatting pipeline (source -> format) and check its invariants.
//
// Назначение: загружать байты как виртуальный файл, форматировать и проверять
// идемпотентность, сохранность строк и выравнивание колонок.
//
// Не делает: запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/format, internal/testkit.

package fuzztests
