// Package fuzztests houses Go fuzz harnesses for the front end of bslint
// (source -> lexer -> parser -> symbols). They smoke test robustness: no
// panics, no hangs, lossless token streams and sane spans on arbitrary input.
//
// Назначение: прогонять произвольные байты через FileSet, лексер и парсер.
//
// Не делает: генерацию корпусов, запись файлов, запуск правил.
//
// Зависимости: internal/source, internal/lexer, internal/parser,
// internal/symbols, internal/testkit.

package fuzztests
