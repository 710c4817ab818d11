// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fuel estimates fuel volume and cost for a trip.
package fuel

import (
	"context"
	"fmt"
	"math"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/check"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// Name is the catalog directory of this algorithm.
const Name = "fuel_consumption"

// Output names.
const (
	Volume = "volume"
	Cost   = "cost"
)

// Estimate returns the fuel volume for distance at meanConsumption litres
// per 100 km, and its cost at price per litre. With round set both values
// are rounded half to even to whole units; otherwise to two decimals.
func Estimate(distance, meanConsumption, price float64, round bool) (volume, cost float64, err error) {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"distance", distance},
		{"mean consumption", meanConsumption},
		{"price", price},
	} {
		if v.value < 0 {
			return 0, 0, fmt.Errorf("value of parameter %s is negative", v.name)
		}
	}

	volume = distance * meanConsumption / 100
	cost = volume * price
	if round {
		return math.RoundToEven(volume), math.RoundToEven(cost), nil
	}
	return math.Round(volume*100) / 100, math.Round(cost*100) / 100, nil
}

// Main reads distance, mean_consumption, price, need_round and returns
// {"volume", "cost"}.
func Main(_ context.Context, p core.Params) (core.Params, error) {
	distance, err := p.Float("distance")
	if err != nil {
		return nil, err
	}
	mean, err := p.Float("mean_consumption")
	if err != nil {
		return nil, err
	}
	price, err := p.Float("price")
	if err != nil {
		return nil, err
	}
	round, err := p.Bool("need_round")
	if err != nil {
		return nil, err
	}
	volume, cost, err := Estimate(distance, mean, price, round)
	if err != nil {
		return nil, err
	}
	return core.Params{Volume: volume, Cost: cost}, nil
}

func trip(distance, mean, price any, round bool) core.Params {
	return core.Params{"distance": distance, "mean_consumption": mean, "price": price, "need_round": round}
}

// Plugin returns the registration for this algorithm.
func Plugin() builder.Plugin {
	return builder.Plugin{
		Name: Name,
		Main: Main,
		Tests: []builder.UnitTest{
			check.Fails("distance not a number", Main, trip("str", 0.0, 0.0, true), "distance is not a number"),
			check.Fails("distance negative", Main, trip(-1.0, 0.0, 0.0, true), "parameter distance is negative"),
			check.Fails("mean not a number", Main, trip(0.0, []any{}, 0.0, true), "mean_consumption is not a number"),
			check.Fails("mean negative", Main, trip(0.0, -1.0, 0.0, true), "parameter mean consumption is negative"),
			check.Fails("price not a number", Main, trip(0.0, 0.0, nil, true), "price is not a number"),
			check.Fails("price negative", Main, trip(0.0, 0.0, -1.0, true), "parameter price is negative"),
			check.Outputs("zero", Main, trip(0.0, 0.0, 0.0, true), core.Params{Volume: 0.0, Cost: 0.0}),
			check.Outputs("round", Main, trip(100.0, 7.5, 45.0, true), core.Params{Volume: 8.0, Cost: 338.0}),
			check.Outputs("not round", Main, trip(100.0, 7.5, 45.0, false), core.Params{Volume: 7.5, Cost: 337.5}),
		},
	}
}
