package discord

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// commandCachePath is where the hash of the last registered /mimic definition is kept, so
// restarts do not re-upload an unchanged command.
func commandCachePath(appID string) string {
	return filepath.Join("data", "commands", appID+".sha256")
}

type optionShape struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        int           `json:"type"`
	Required    bool          `json:"required"`
	Options     []optionShape `json:"options,omitempty"`
}

func shapeOptions(opts []*discordgo.ApplicationCommandOption) []optionShape {
	out := make([]optionShape, 0, len(opts))
	for _, o := range opts {
		out = append(out, optionShape{
			Name:        o.Name,
			Description: o.Description,
			Type:        int(o.Type),
			Required:    o.Required,
			Options:     shapeOptions(o.Options),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// hashCommand hashes the user-visible parts of a command definition. IDs and versions
// assigned by Discord are ignored.
func hashCommand(c *discordgo.ApplicationCommand) string {
	data, _ := json.Marshal(optionShape{
		Name:        c.Name,
		Description: c.Description,
		Options:     shapeOptions(c.Options),
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func loadCommandHash(appID string) string {
	data, err := os.ReadFile(commandCachePath(appID))
	if err != nil {
		return ""
	}
	return string(data)
}

func saveCommandHash(appID, hash string) error {
	path := commandCachePath(appID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(hash), 0o644)
}
