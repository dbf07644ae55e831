package telegrambot

import (
	"fmt"
	"strings"

	"github.com/MrPunder/qrstyle/internal/models"
)

// fieldUpdate изменение одного поля конфигурации
type fieldUpdate struct {
	field string
	value string
}

// Поля, которые меняет каждая команда, в порядке аргументов
var commandFields = map[string][]string{
	"/url":       {models.FieldURL},
	"/dots":      {models.FieldDotType},
	"/dotcolor":  {models.FieldDotColor},
	"/bg":        {models.FieldBackgroundColor},
	"/square":    {models.FieldCornerSquareType, models.FieldCornerSquareColor},
	"/cornerdot": {models.FieldCornerDotType, models.FieldCornerDotColor},
	"/size":      {models.FieldImageSize},
	"/margin":    {models.FieldImageMargin},
	"/format":    {models.FieldDownloadExtension},
}

// NormalizeCommand убирает имя бота из команды: /url@qrbot -> /url
func NormalizeCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}

// parseUpdates разбирает аргументы команды в изменения полей
func parseUpdates(command, payload string) ([]fieldUpdate, error) {
	fields, ok := commandFields[command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrNoArguments
	}

	// ссылка или текст передаются целиком, вместе с пробелами
	if fields[0] == models.FieldURL {
		return []fieldUpdate{{field: models.FieldURL, value: payload}}, nil
	}

	args := strings.Fields(payload)
	if len(args) > len(fields) {
		return nil, fmt.Errorf("%w: ожидается не больше %d", ErrTooManyArguments, len(fields))
	}

	updates := make([]fieldUpdate, 0, len(args))
	for i, arg := range args {
		updates = append(updates, fieldUpdate{field: fields[i], value: arg})
	}
	return updates, nil
}

// describe форматирует текущие настройки для ответа пользователю
func describe(c models.StyleConfig) string {
	image := "нет"
	if c.Image != "" {
		image = "есть"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ссылка: %s\n", c.Data)
	fmt.Fprintf(&b, "Точки: %s %s\n", c.DotsType, c.DotsColor)
	fmt.Fprintf(&b, "Фон: %s\n", c.BackgroundColor)
	fmt.Fprintf(&b, "Углы: %s %s\n", c.CornersSquareType, c.CornersSquareColor)
	fmt.Fprintf(&b, "Точки углов: %s %s\n", c.CornersDotType, c.CornersDotColor)
	fmt.Fprintf(&b, "Логотип: %s (размер %g, отступ %d)\n", image, c.ImageSize, c.ImageMargin)
	fmt.Fprintf(&b, "Формат: %s", c.Extension)
	return b.String()
}

const helpText = `Я собираю стилизованный QR-код.
/url <ссылка> - содержимое кода
/dots <classy|dots|rounded|classy-rounded|square|extra-rounded> - тип точек
/dotcolor <#rrggbb> - цвет точек
/bg <#rrggbb> - цвет фона
/square <dot|square|extra-rounded> [#rrggbb] - угловые квадраты
/cornerdot <dot|square> [#rrggbb] - точки в углах
/size <0.1-1> - размер логотипа
/margin <0-20> - отступ логотипа
/format <png|jpeg|webp> - формат выгрузки
/noimage - убрать логотип
/preview - показать код
/export - скачать файл
Пришли фото, чтобы поставить его в центр кода.`
