package editor

import (
	"encoding/json"
	"errors"

	"github.com/nodepress/designer/internal/block"
)

// CommandType enumerates the operations a client can send to a session.
type CommandType string

const (
	CmdAddBlock       CommandType = "add_block"
	CmdRemoveBlock    CommandType = "remove_block"
	CmdMoveBlock      CommandType = "move_block"
	CmdDuplicateBlock CommandType = "duplicate_block"
	CmdSetProps       CommandType = "set_props"
	CmdUpdateBlock    CommandType = "update_block"
	CmdSetLink        CommandType = "set_link"
	CmdSetVisibility  CommandType = "set_visibility"
	CmdSetAnimation   CommandType = "set_animation"
	CmdSetStyle       CommandType = "set_style"
	CmdApplyTemplate  CommandType = "apply_template"
	CmdReplaceBlocks  CommandType = "replace_blocks"
	CmdUndo           CommandType = "undo"
	CmdRedo           CommandType = "redo"
)

var ErrUnknownCommand = errors.New("unknown editor command")

// Command is one editor mutation. Props payloads stay raw until the target
// block's type is known, then decode onto that type's defaults.
type Command struct {
	Type CommandType `json:"type"`

	BlockType block.Type `json:"block_type,omitempty"`
	BlockID   string     `json:"block_id,omitempty"`
	Index     *int       `json:"index,omitempty"`

	Props      json.RawMessage   `json:"props,omitempty"`
	Link       *block.Link       `json:"link,omitempty"`
	Visibility *block.Visibility `json:"visibility,omitempty"`
	Animation  *block.Animation  `json:"animation,omitempty"`
	Style      *block.Style      `json:"style,omitempty"`

	TemplateID string          `json:"template_id,omitempty"`
	Blocks     json.RawMessage `json:"blocks,omitempty"`
}

// index returns the command's index or a default.
func (c Command) index(def int) int {
	if c.Index == nil {
		return def
	}
	return *c.Index
}
