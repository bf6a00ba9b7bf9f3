package irc

import "strings"

// CheckAddressed returns true if message starts with botNick followed by a separator or end of string.
func CheckAddressed(message, botNick string) bool {
	if botNick == "" {
		return true
	}
	if !strings.HasPrefix(message, botNick) {
		return false
	}
	if len(message) == len(botNick) {
		return true
	}
	next := message[len(botNick)]
	return next == ' ' || next == ':' || next == ','
}

// CheckValid determines if a message should be processed: the bot was
// addressed, addressed mode is off, or the message is private; and there is
// something left to process.
func CheckValid(isAddressed, addressedMode, isPrivate bool, argCount int) bool {
	return (isAddressed || !addressedMode || isPrivate) && argCount > 0
}

// CheckPrivate returns true if target is not a channel (doesn't start with #).
func CheckPrivate(target string) bool {
	return !strings.HasPrefix(target, "#")
}

// SessionKey picks the conversation a message belongs to: the channel, or
// the sender for private messages.
func SessionKey(target, source string) string {
	if CheckPrivate(target) {
		return source
	}
	return target
}

// ParseArgs splits a message into words, dropping the leading nick when the
// bot was addressed.
func ParseArgs(message, botNick string, addressed bool) []string {
	args := strings.Fields(message)
	if addressed && botNick != "" && len(args) > 0 {
		args = args[1:]
	}
	return args
}
