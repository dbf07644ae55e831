package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrPunder/qrstyle/internal/config"
	"github.com/MrPunder/qrstyle/internal/configurator"
	"github.com/MrPunder/qrstyle/internal/logger"
	"github.com/MrPunder/qrstyle/internal/models"
	qrcode "github.com/skip2/go-qrcode"
)

// Поля, которые можно задать флагами; image принимает путь к файлу
var styleFields = []string{
	models.FieldURL,
	models.FieldImage,
	models.FieldImageSize,
	models.FieldImageMargin,
	models.FieldDotType,
	models.FieldDotColor,
	models.FieldBackgroundColor,
	models.FieldCornerSquareType,
	models.FieldCornerSquareColor,
	models.FieldCornerDotType,
	models.FieldCornerDotColor,
	models.FieldDownloadExtension,
}

func main() {
	configPath := flag.String("c", "", "config path")
	output := flag.String("o", "", "output file, extension selects the format")
	preview := flag.Bool("preview", true, "print the code to the terminal")

	values := make(map[string]*string, len(styleFields))
	for _, field := range styleFields {
		values[field] = flag.String(field, "", "style field "+field)
	}
	flag.Parse()

	if *output == "" {
		fmt.Println("Ошибка: не указан файл для сохранения")
		fmt.Println("Использование: qrstyle -o qr.png [-url=https://example.com -dot-type=rounded ...]")
		os.Exit(1)
	}

	conf, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewZapLogger(conf.Log)
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}

	builder, err := configurator.NewBuilder(conf, log)
	if err != nil {
		fmt.Printf("Ошибка подготовки рендерера: %v\n", err)
		os.Exit(1)
	}
	c, _, err := builder.Build()
	if err != nil {
		fmt.Printf("Ошибка создания конфигуратора: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	// расширение файла задает формат, если он не указан явно
	if *values[models.FieldDownloadExtension] == "" {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(*output)), ".")
		if ext == "jpg" {
			ext = string(models.ExtensionJPEG)
		}
		if _, err := models.ParseFileExtension(ext); err == nil {
			*values[models.FieldDownloadExtension] = ext
		}
	}

	var setErr error
	flag.Visit(func(f *flag.Flag) {
		if setErr != nil || f.Name == models.FieldImage {
			return
		}
		if _, ok := values[f.Name]; ok {
			setErr = c.UpdateField(f.Name, f.Value.String())
		}
	})
	if setErr == nil && *values[models.FieldDownloadExtension] != "" {
		setErr = c.UpdateField(models.FieldDownloadExtension, *values[models.FieldDownloadExtension])
	}
	if setErr != nil {
		fmt.Printf("Ошибка: %v\n", setErr)
		os.Exit(1)
	}

	if path := *values[models.FieldImage]; path != "" {
		if err := setImage(c, path); err != nil {
			fmt.Printf("Ошибка загрузки логотипа: %v\n", err)
			os.Exit(1)
		}
	}

	if err := export(c, *output); err != nil {
		fmt.Printf("Ошибка сохранения: %v\n", err)
		os.Exit(1)
	}

	if *preview {
		cfg := c.Snapshot()
		if cfg.Data != "" {
			code, err := qrcode.New(cfg.Data, qrcode.Medium)
			if err == nil {
				fmt.Print(code.ToSmallString(false))
			}
		}
	}

	fmt.Printf("QR-код сохранен в %s\n", *output)
	_ = log.Close()
}

func setImage(c *configurator.Configurator, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return <-c.SetImageFile(ctx, f)
}

func export(c *configurator.Configurator, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.ExportImage(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
