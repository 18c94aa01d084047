package prospecting

import "fmt"

// PlayerIdentity is a server-side player resolved from an acting entity.
type PlayerIdentity struct {
	ID   string
	Name string
}

// WorldAccessor is the world capability consumed by the pick.
type WorldAccessor interface {
	CellReader
	// ResolvePlayer returns the server-side player behind entityID. Client
	// predicted actions and non-player entities do not resolve.
	ResolvePlayer(entityID string) (PlayerIdentity, bool)
}

type EffectsSink interface {
	Emit(p ParticleSpec)
}

// Channel names the chat group a notification is delivered to.
type Channel string

const ChannelGeneral Channel = "general"

type NotificationSink interface {
	Send(player PlayerIdentity, message string, channel Channel)
}

// DurabilityDamager reduces the durability of an item in the hands of entityID.
type DurabilityDamager interface {
	DamageItem(entityID string, item ItemRef, amount int)
}

// SkipReason explains why a break did not walk the cube.
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipNotGround  SkipReason = "not_ground"
	SkipNotPlayer  SkipReason = "not_player"
	SkipNoResource SkipReason = "no_resource"
)

// BlockBrokenContext describes one "block broken with a pick" event.
type BlockBrokenContext struct {
	EntityID string
	Pos      Pos
	// Block is the descriptor of the cell as it was before breaking.
	Block CellDescriptor
	Item  ItemRef
	// DamagedByBreaking is set when the item loses durability on block breaking.
	DamagedByBreaking bool
}

// Report summarizes one OnBlockBroken call.
type Report struct {
	PlayerID string     `json:"player_id,omitempty"`
	Origin   Pos        `json:"origin"`
	Mode     ToolMode   `json:"mode"`
	Radius   int        `json:"radius"`
	Resource string     `json:"resource"`
	Scanned  bool       `json:"scanned"`
	Found    int        `json:"found"`
	Cells    int        `json:"cells"`
	Damage   int        `json:"damage"`
	Skip     SkipReason `json:"skip,omitempty"`
}

// Pick implements the prospecting pick behavior on top of the world capabilities.
type Pick struct {
	World   WorldAccessor
	Effects EffectsSink
	Notify  NotificationSink
	Damager DurabilityDamager

	Rand    Rand
	Style   ParticleStyle
	Channel Channel
	// DamageDivisor turns the radius into durability damage (radius/DamageDivisor).
	DamageDivisor int
}

func (p *Pick) channel() Channel {
	if p.Channel == "" {
		return ChannelGeneral
	}
	return p.Channel
}

func (p *Pick) damageFor(radius int) int {
	div := p.DamageDivisor
	if div <= 0 {
		div = 3
	}
	return radius / div
}

// OnBlockBroken runs the prospect for a block broken with the pick and charges
// durability. The scan completes before it returns.
func (p *Pick) OnBlockBroken(ctx BlockBrokenContext) Report {
	var attrs ItemAttributeStore
	if ctx.Item != nil {
		attrs = ctx.Item.Attributes()
	}
	mode := ReadToolMode(attrs)
	radius := ResolveRadius(mode)

	rep := Report{
		Origin:   ctx.Pos,
		Mode:     mode,
		Radius:   radius,
		Resource: ResourceTag(attrs),
	}
	rep.Skip = p.prospect(ctx, &rep)

	if ctx.DamagedByBreaking && p.Damager != nil && ctx.Item != nil {
		rep.Damage = p.damageFor(radius)
		p.Damager.DamageItem(ctx.EntityID, ctx.Item, rep.Damage)
	}
	return rep
}

func (p *Pick) prospect(ctx BlockBrokenContext, rep *Report) SkipReason {
	if !ctx.Block.BreakableGround() {
		return SkipNotGround
	}
	if p.World == nil {
		return SkipNotPlayer
	}
	player, ok := p.World.ResolvePlayer(ctx.EntityID)
	if !ok {
		return SkipNotPlayer
	}
	rep.PlayerID = player.ID

	if rep.Resource == ResourceNone {
		p.send(player, "No resource selected for this pick")
		return SkipNoResource
	}

	rep.Scanned = true
	rep.Cells = CubeVolume(rep.Radius)
	rep.Found = Scan(p.World, ctx.Pos, rep.Radius, rep.Resource, func(m Match) {
		if p.Effects != nil {
			p.Effects.Emit(NewTrailParticle(p.Style, p.Rand, m))
		}
	})
	p.send(player, fmt.Sprintf("Found %d %s nodes within %d blocks", rep.Found, rep.Resource, rep.Radius))
	return SkipNone
}

func (p *Pick) send(player PlayerIdentity, msg string) {
	if p.Notify == nil {
		return
	}
	p.Notify.Send(player, msg, p.channel())
}

// OnCrafted derives the crafted pick's attributes from the consumed inputs.
func (p *Pick) OnCrafted(inputs []ItemRef, output ItemRef) {
	DeriveOutputAttributes(inputs, output)
}
