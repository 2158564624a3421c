// Package fuzztests houses Go fuzz harnesses for the parse and format
// pipeline (source -> parser -> formatter). They smoke test robustness:
// no panics, no hangs, lossless trees and stable formatting on arbitrary
// input.
//
// Назначение: загружать байты в FileSet и прогонять их через парсер и
// форматтер, проверяя инварианты дерева.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
