package browser

// PingBinding is the name of the function the pagination script calls to
// signal it is still making progress. The binding is fire-and-forget: the
// script never waits on it and tolerates it being absent.
const PingBinding = "__pagereaperPing"

// paginationScript drives the page-specific content-loading interaction:
// it clicks expandable controls, scrolls to the bottom in rounds, and
// finishes once the page stops growing. Each round emits a liveness ping so
// a slow page is distinguishable from a dead one.
const paginationScript = `async (expandSelector, maxRounds, intervalMs, stableRounds) => {
	const sleep = (ms) => new Promise((resolve) => setTimeout(resolve, ms));
	const ping = () => {
		if (window.` + PingBinding + `) {
			try { window.` + PingBinding + `(); } catch (e) {}
		}
	};

	let lastHeight = 0;
	let stable = 0;
	let rounds = 0;

	for (; rounds < maxRounds; rounds++) {
		ping();

		if (expandSelector) {
			for (const el of document.querySelectorAll(expandSelector)) {
				try { el.click(); } catch (e) {}
			}
		}

		window.scrollTo(0, document.body.scrollHeight);
		await sleep(intervalMs);

		const height = document.body.scrollHeight;
		if (height === lastHeight) {
			stable++;
		} else {
			stable = 0;
		}
		lastHeight = height;

		if (stable >= stableRounds) {
			break;
		}
	}

	window.scrollTo(0, 0);
	return rounds;
}`
