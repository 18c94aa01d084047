package welcome

import (
	"prospector.ai/internal/protocol"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

type Input struct {
	SessionID          string
	PlayerID           string
	Seed               int64
	Height             int
	BoundaryR          int
	BlockPaletteDigest string
	BlockPaletteCount  int
	ItemPaletteDigest  string
	ItemPaletteCount   int
	RecipesDigest      string
}

func Build(in Input) protocol.WelcomeMsg {
	modes := prospecting.ToolModes()
	refs := make([]protocol.ToolModeRef, 0, len(modes))
	for _, m := range modes {
		refs = append(refs, protocol.ToolModeRef{
			Mode:   int(m),
			Code:   m.Code(),
			Name:   m.Name(),
			Radius: prospecting.ResolveRadius(m),
		})
	}
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       in.SessionID,
		PlayerID:        in.PlayerID,
		WorldParams: protocol.WorldParams{
			Seed:      in.Seed,
			Height:    in.Height,
			BoundaryR: in.BoundaryR,
		},
		Catalogs: protocol.CatalogDigests{
			BlockPalette:  protocol.DigestRef{Digest: in.BlockPaletteDigest, Count: in.BlockPaletteCount},
			ItemPalette:   protocol.DigestRef{Digest: in.ItemPaletteDigest, Count: in.ItemPaletteCount},
			RecipesDigest: in.RecipesDigest,
		},
		ToolModes: refs,
	}
}
