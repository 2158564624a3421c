// Package format rewrites the whitespace leaves of a parsed file.
//
// Назначение: канонические отступы, пробелы и пустые строки поверх дерева из
// internal/parser. Текст токенов не меняется никогда; CheckTokens проверяет
// это после каждого прогона.
// Не делает: перенос длинных строк, переупорядочивание use, IO.
// Зависимости: internal/ast, internal/parser, internal/diag, x/text/unicode/norm.
package format
