package action

import (
	"fmt"
	"strings"
)

// HelpText lists the phrasings the parser understands.
const HelpText = `Commands:

Windows
  open slack on the top third of my second monitor
  move terminal to left half
  resize firefox to 1200x800
  minimize slack | maximize firefox | close gedit

Processes
  start docker daemon
  stop nginx | kill nginx
  restart postgresql

System
  show monitors
  what's the system status
  monitor nginx

Files
  read file notes.txt | list files in ~/src
  create file todo.md | delete file old.log

Fleet
  fleet status | observe fleet interactions
  coordinate fleet status | deploy across staging
  engage interactive fleet session

Session
  history   show operations run so far
  exit      leave the shell

Every command is classified by risk, the host is observed before and
after it runs, and unexpected changes are reported.`

const fleetStatusText = `Fleet status (local session):
  this host is the only member
  observation before and after every command is active
  history is kept in memory for this session`

const sessionText = `Interactive session engaged:
  commands are gated by risk tier
  the host is observed before and after each command
  type "help" for phrasings or "history" for what ran so far`

// cannedReplies is checked in order; the first rule whose keywords all
// appear in the lowercased input answers.
var cannedReplies = []struct {
	keywords []string
	reply    string
}{
	{[]string{"help"}, HelpText},
	{[]string{"thank"}, "You're welcome. Anything else?"},
	{[]string{"status"}, `Try "what's the system status" for uptime and disk usage.`},
	{[]string{"how"}, `Try "help" to see what I can do.`},
	{[]string{"fleet"}, `Try "fleet status" or "observe fleet interactions".`},
	{[]string{"hello"}, "Hello. Type a command, or \"help\"."},
	{[]string{"hi"}, "Hi. Type a command, or \"help\"."},
}

func cannedReply(input string) string {
	lower := strings.ToLower(input)
	words := strings.Fields(lower)
	for _, c := range cannedReplies {
		if containsAll(lower, words, c.keywords) {
			return c.reply
		}
	}
	return fmt.Sprintf("I didn't recognize %q as a command. Type \"help\" for examples.", strings.TrimSpace(input))
}

// containsAll matches short keywords as whole words and longer ones as
// substrings.
func containsAll(lower string, words []string, keywords []string) bool {
	for _, k := range keywords {
		if len(k) <= 3 {
			if !hasWord(words, k) {
				return false
			}
			continue
		}
		if !strings.Contains(lower, k) {
			return false
		}
	}
	return true
}

func hasWord(words []string, w string) bool {
	for _, x := range words {
		if strings.Trim(x, ".,!?") == w {
			return true
		}
	}
	return false
}
