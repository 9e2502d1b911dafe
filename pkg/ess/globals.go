package ess

import "fmt"

func (s *decodeState) globals() (GlobalSection, error) {
	var (
		g   GlobalSection
		err error
		c   = s.c
	)

	// formIDsOffset points at the FormID array further down the file; a
	// forward-only reader has no use for it.
	if err := c.Skip(4); err != nil {
		return g, inField("form_ids_offset", err)
	}
	if g.RecordsNum, err = c.ReadFormID(); err != nil {
		return g, inField("records_num", err)
	}
	if g.NextObjectID, err = c.ReadFormID(); err != nil {
		return g, inField("next_object_id", err)
	}
	if g.WorldID, err = c.ReadFormID(); err != nil {
		return g, inField("world_id", err)
	}
	if g.WorldX, err = c.ReadU32(); err != nil {
		return g, inField("world_x", err)
	}
	if g.WorldY, err = c.ReadU32(); err != nil {
		return g, inField("world_y", err)
	}
	if g.PlayerLocation, err = readPlayerLocation(c); err != nil {
		return g, inField("player_location", err)
	}
	if g.Globals, err = readList[uint16](c, "globals", readGlobalVar); err != nil {
		return g, err
	}
	// tesClassSize
	if err := c.Skip(2); err != nil {
		return g, inField("tes_class_size", err)
	}
	if g.DeathCounts, err = readList[uint32](c, "death_counts", readDeathCount); err != nil {
		return g, err
	}
	if g.GameModeSecs, err = c.ReadF32(); err != nil {
		return g, inField("game_mode_seconds", err)
	}
	if g.Processes, err = readBlob16(c); err != nil {
		return g, inField("processes", err)
	}
	if g.SpectatorEvents, err = readBlob16(c); err != nil {
		return g, inField("spectator_events", err)
	}
	if g.Weather, err = readBlob16(c); err != nil {
		return g, inField("weather", err)
	}
	if g.PlayerCombatCount, err = c.ReadU32(); err != nil {
		return g, inField("player_combat_count", err)
	}
	if g.CreatedItems, err = readList[uint32](c, "created_items", readRecord); err != nil {
		return g, err
	}

	slot := 0
	readQuickKey := func(*Cursor) (*IRef, error) {
		key, err := s.quickKey(fmt.Sprintf("globals.quick_keys[%d]", slot))
		slot++
		return key, err
	}
	if g.QuickKeys, err = readList[uint16](c, "quick_keys", readQuickKey); err != nil {
		return g, err
	}

	if g.Reticule, err = readBlob16(c); err != nil {
		return g, inField("reticule", err)
	}
	if g.Interface, err = readBlob16(c); err != nil {
		return g, inField("interface", err)
	}
	// regionsSize
	if err := c.Skip(2); err != nil {
		return g, inField("regions_size", err)
	}
	if g.Regions, err = readList[uint16](c, "regions", readRegion); err != nil {
		return g, err
	}
	return g, nil
}

func readPlayerLocation(c *Cursor) (PlayerLocation, error) {
	var (
		loc PlayerLocation
		err error
	)
	if loc.Cell, err = c.ReadFormID(); err != nil {
		return loc, inField("cell", err)
	}
	for _, f := range []*float32{&loc.X, &loc.Y, &loc.Z} {
		if *f, err = c.ReadF32(); err != nil {
			return loc, err
		}
	}
	return loc, nil
}

func readGlobalVar(c *Cursor) (GlobalVar, error) {
	iref, err := c.ReadIRef()
	if err != nil {
		return GlobalVar{}, err
	}
	v, err := c.ReadF32()
	if err != nil {
		return GlobalVar{}, err
	}
	return GlobalVar{IRef: iref, Value: v}, nil
}

func readDeathCount(c *Cursor) (DeathCount, error) {
	actor, err := c.ReadIRef()
	if err != nil {
		return DeathCount{}, err
	}
	n, err := c.ReadU16()
	if err != nil {
		return DeathCount{}, err
	}
	return DeathCount{Actor: actor, Count: n}, nil
}

func readRegion(c *Cursor) (Region, error) {
	iref, err := c.ReadIRef()
	if err != nil {
		return Region{}, err
	}
	v, err := c.ReadU32()
	if err != nil {
		return Region{}, err
	}
	return Region{IRef: iref, Value: v}, nil
}

// quickKey reads one hotkey slot: a boolean discriminant, then an IRef when
// the slot is set.
func (s *decodeState) quickKey(field string) (*IRef, error) {
	set, err := s.readBool(field)
	if err != nil {
		return nil, err
	}
	if !set {
		return nil, nil
	}
	iref, err := s.c.ReadIRef()
	if err != nil {
		return nil, err
	}
	return &iref, nil
}
