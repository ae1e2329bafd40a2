// This file is part of Machina.
//
// Machina is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Machina is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Machina.  If not, see <https://www.gnu.org/licenses/>.

// Package statsview provides a HTTP server running locally offering
// runtime statistics. The underlying functionality is provided by
// "github.com/go-echarts/statsview" and is only built when the statsview
// build constraint is present.
//
// After launch, graphical statistics will be viewable at:
//
//	localhost:12900/debug/statsview
//
// And standard Go pprof statistics available at:
//
//	localhost:12900/debug/pprof/
//
// In builds without the constraint, Launch() explains that the feature
// is missing and Available() returns false.
package statsview
