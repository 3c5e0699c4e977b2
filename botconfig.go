package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"travel-helper/db"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// configOption describes one tunable setting shown in the /config menu
type configOption struct {
	key    string
	label  string
	values []string
	isInt  bool
}

var configOptions = []configOption{
	{key: "max_pages", label: "📄 Max Pages", values: []string{"3", "5", "10", "15", "20"}, isInt: true},
	{key: "min_reviews", label: "⭐ Min Reviews", values: []string{"0", "5", "10", "20", "50"}, isInt: true},
	{key: "min_price", label: "💰 Min Price", values: []string{"0", "50", "100", "200", "500"}},
	{key: "max_price", label: "💰 Max Price", values: []string{"500", "1000", "2000", "3000", "5000"}},
	{key: "min_stars", label: "⭐ Min Stars", values: []string{"0", "3.0", "4.0", "4.5", "4.8"}},
}

func findConfigOption(key string) *configOption {
	for i := range configOptions {
		if configOptions[i].key == key {
			return &configOptions[i]
		}
	}
	return nil
}

// configSummary renders a user's current settings
func configSummary(cfg *db.UserConfig) string {
	return fmt.Sprintf(
		"⚙️ Current Configuration:\n\n"+
			"📄 Max Pages: %d\n"+
			"⭐ Min Reviews: %d\n"+
			"💰 Min Price: %.2f\n"+
			"💰 Max Price: %.2f\n"+
			"⭐ Min Stars: %.2f\n\n"+
			"Click buttons below to change values:",
		cfg.MaxPages, cfg.MinReviews, cfg.MinPrice, cfg.MaxPrice, cfg.MinStars)
}

// mainConfigKeyboard builds the top-level /config keyboard
func mainConfigKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, opt := range configOptions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt.label, "config_"+opt.key),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// valueKeyboard builds the value-picker keyboard for one option
func valueKeyboard(opt *configOption) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, v := range opt.values {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(v, fmt.Sprintf("set_%s_%s", opt.key, v)))
		if len(row) == 3 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "config_back"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// sendConfigMenu sends (or edits, when messageID is non-zero) the main
// config menu
func sendConfigMenu(bot *tgbotapi.BotAPI, database *db.DB, chatID int64, userID int64, messageID int) {
	userConfig, err := database.GetUserConfig(userID)
	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Error loading config: %v", err)))
		return
	}

	keyboard := mainConfigKeyboard()
	if messageID != 0 {
		editMsg := tgbotapi.NewEditMessageText(chatID, messageID, configSummary(userConfig))
		editMsg.ReplyMarkup = &keyboard
		bot.Send(editMsg)
		return
	}

	msg := tgbotapi.NewMessage(chatID, configSummary(userConfig))
	msg.ReplyMarkup = keyboard
	bot.Send(msg)
}

// handleCallbackQuery handles callback queries from inline keyboard buttons
func handleCallbackQuery(bot *tgbotapi.BotAPI, database *db.DB, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	data := callback.Data

	// Acknowledge callback
	bot.Send(tgbotapi.NewCallback(callback.ID, ""))

	if strings.HasPrefix(data, "config_") {
		configType := strings.TrimPrefix(data, "config_")
		handleConfigCallback(bot, database, chatID, userID, configType, callback.Message.MessageID)
	} else if strings.HasPrefix(data, "set_") {
		// Format: set_<key>_<value>; keys themselves contain underscores,
		// so split the value off the end
		rest := strings.TrimPrefix(data, "set_")
		idx := strings.LastIndex(rest, "_")
		if idx > 0 {
			handleSetConfigValue(bot, database, chatID, userID, rest[:idx], rest[idx+1:], callback.Message.MessageID)
		}
	}
}

// handleConfigCallback shows options for changing a specific config value
func handleConfigCallback(bot *tgbotapi.BotAPI, database *db.DB, chatID int64, userID int64, configType string, messageID int) {
	if configType == "back" {
		sendConfigMenu(bot, database, chatID, userID, messageID)
		return
	}

	opt := findConfigOption(configType)
	if opt == nil {
		return
	}

	userConfig, err := database.GetUserConfig(userID)
	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Error loading config: %v", err)))
		return
	}

	var current string
	switch opt.key {
	case "max_pages":
		current = strconv.Itoa(userConfig.MaxPages)
	case "min_reviews":
		current = strconv.Itoa(userConfig.MinReviews)
	case "min_price":
		current = fmt.Sprintf("%.2f", userConfig.MinPrice)
	case "max_price":
		current = fmt.Sprintf("%.2f", userConfig.MaxPrice)
	case "min_stars":
		current = fmt.Sprintf("%.2f", userConfig.MinStars)
	}

	text := fmt.Sprintf("%s\n\nCurrent: %s\n\nSelect new value:", opt.label, current)
	keyboard := valueKeyboard(opt)

	editMsg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	editMsg.ReplyMarkup = &keyboard
	bot.Send(editMsg)
}

// handleSetConfigValue updates a config value and shows the updated menu
func handleSetConfigValue(bot *tgbotapi.BotAPI, database *db.DB, chatID int64, userID int64, configType string, valueStr string, messageID int) {
	opt := findConfigOption(configType)
	if opt == nil {
		bot.Send(tgbotapi.NewMessage(chatID, "Unknown config type"))
		return
	}

	var err error
	if opt.isInt {
		value, convErr := strconv.Atoi(valueStr)
		if convErr != nil {
			bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Invalid value: %s", valueStr)))
			return
		}
		switch opt.key {
		case "max_pages":
			err = database.UpdateUserConfig(userID, &value, nil, nil, nil, nil)
		case "min_reviews":
			err = database.UpdateUserConfig(userID, nil, &value, nil, nil, nil)
		}
	} else {
		value, convErr := strconv.ParseFloat(valueStr, 64)
		if convErr != nil {
			bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Invalid value: %s", valueStr)))
			return
		}
		switch opt.key {
		case "min_price":
			err = database.UpdateUserConfig(userID, nil, nil, &value, nil, nil)
		case "max_price":
			err = database.UpdateUserConfig(userID, nil, nil, nil, &value, nil)
		case "min_stars":
			err = database.UpdateUserConfig(userID, nil, nil, nil, nil, &value)
		}
	}

	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ Error updating config: %v", err)))
		return
	}

	log.Printf("User %d updated %s to %s\n", userID, opt.key, valueStr)
	sendConfigMenu(bot, database, chatID, userID, messageID)
}
