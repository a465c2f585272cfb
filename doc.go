/*
 * doc.go, part of gonstate.
 *
 * Copyright 2024 The gonstate developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*Package nstate implements the N-state model optimization core for NMR
relaxation and structural ensemble analysis. The N-state model represents
molecular flexibility as a weighted ensemble of N discrete conformational
states, and this package fits the state populations, per-state orientations
and alignment tensors against residual dipolar couplings (RDCs),
pseudo-contact shifts (PCSs) and alignment-tensor reduction data.


	**Capabilities**

    Assembles per-spin experimental data (RDC, PCS) and structural
	ensemble geometry into the dense arrays consumed by the target
	function, with explicit missing-data masks.

    Converts between named model parameters (tensor components,
	populations, Euler angles) and the flat vector seen by an optimizer,
	including diagonal scaling and the linear constraint system that keeps
	the populations on the probability simplex.

    Evaluates the multi-data-type chi-squared target function, caching the
	back-calculated observables of every call.

    Computes per-alignment and aggregate Q-factors for RDC and PCS data.

    Drives the optimization either through gonum's minimizers or a
	constrained grid search, with Monte-Carlo-replica variants of every
	operation for error propagation.

The package does no file IO: structures, sequences and measured data are
loaded by external collaborators, and the optimized parameters are exposed
for external serialization (see the results subpackage).
*/
package nstate
