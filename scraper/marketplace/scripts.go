package marketplace

import (
	"encoding/json"
	"fmt"
)

// handleAttr tags every listing card the page has rendered so far. Tags are
// stable for the lifetime of the node.
const handleAttr = "data-mpa-id"

// collectionJS tags listing cards and returns the collection markup. found is
// false when the page has no listing collection at all.
const collectionJS = `
(function() {
	var root = document.querySelector('[aria-label="Collection of Marketplace items"]') ||
	           document.querySelector('div[role="main"]');
	if (!root) {
		return {found: false, html: ''};
	}
	window.__mpaSeq = window.__mpaSeq || 0;
	var links = root.querySelectorAll('a[href*="/marketplace/item/"]');
	for (var i = 0; i < links.length; i++) {
		var card = links[i];
		if (!card.hasAttribute('data-mpa-id')) {
			window.__mpaSeq += 1;
			card.setAttribute('data-mpa-id', 'mpa-' + window.__mpaSeq);
		}
	}
	return {found: true, html: root.outerHTML};
})()
`

// detailProbeJS reads the open listing detail view. The detail layout has no
// stable identifiers, so the attribute rows are located structurally and
// their count decides the listing type on the Go side.
const detailProbeJS = `
(function() {
	var result = {found: false, elementCount: 0, category: '', date: '', description: '',
	              condition: '', driven: '', sellerLines: []};

	var viewer = document.querySelector('[aria-label="Marketplace Listing Viewer"]');
	var inline = null, pageConfig = 0;
	if (viewer) {
		inline = viewer.querySelector('[style="display: inline;"]');
	} else {
		var main = document.querySelector('div[role="main"]');
		if (main) {
			inline = main.querySelector('[style="display:inline"]');
			pageConfig = 1;
		}
	}
	if (!inline) return result;

	var elems;
	try {
		elems = inline.children[1].children[0].children[1].children[0].children[1 - pageConfig].children[0].children;
	} catch (e) {
		return result;
	}
	result.found = true;
	result.elementCount = elems.length;

	function text(el) {
		if (!el) return '';
		var t = el.querySelector('[dir="auto"]') || el;
		return (t.textContent || '').trim();
	}
	function seller(el) {
		if (!el) return [];
		var list = el.querySelector('[role="list"]');
		if (!list) return [];
		var out = [];
		for (var i = 1; i < list.childNodes.length; i++) {
			out.push(text(list.childNodes[i]));
		}
		return out;
	}
	function abbrDate(el) {
		var abbr = el && el.querySelector('abbr');
		return abbr ? (abbr.getAttribute('aria-label') || abbr.textContent || '') : text(el);
	}

	try {
		if (elems.length >= 15) {
			result.category = text(elems[0].children[2]);
			result.date = text(elems[1].children[0].lastChild);
			result.description = text(elems[7].children[1].children[0].children[0]);
			result.sellerLines = seller(elems[13]);
		} else if (elems.length >= 8) {
			result.date = abbrDate(elems[0].children[2]);
			result.description = text(elems[5].children[1].children[0].children[0]);
			result.driven = text(elems[4].children[1]);
			result.sellerLines = seller(elems[6]);
		} else if (elems.length >= 3) {
			result.date = abbrDate(elems[0].children[0].children[2]);
			var body = elems[0].children[4].children[0].children[1];
			result.description = text(body.children[1]);
			var rows = body.children[0].childNodes;
			for (var r = 0; r < rows.length; r++) {
				var labels = rows[r].querySelectorAll('[dir="auto"]');
				if (labels.length > 1 && labels[0].textContent.toLowerCase() === 'condition') {
					result.condition = labels[1].textContent;
				}
			}
			result.sellerLines = seller(elems[1]);
		}
	} catch (e) {
		// partial reads are returned as-is
	}
	return result;
})()
`

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// highlightJS decorates one tagged card. It returns false without touching
// anything when the node is gone.
func highlightJS(handle, color, tooltip string) string {
	return fmt.Sprintf(`
(function(id, color, tip) {
	var el = document.querySelector('[data-mpa-id="' + id + '"]');
	if (!el || !el.isConnected) return false;
	el.style.backgroundColor = color;
	el.title = tip;
	return true;
})(%s, %s, %s)`, jsString(handle), jsString(color), jsString(tooltip))
}

func resetJS(handle string) string {
	return fmt.Sprintf(`
(function(id) {
	var el = document.querySelector('[data-mpa-id="' + id + '"]');
	if (!el || !el.isConnected) return false;
	el.style.backgroundColor = '';
	el.removeAttribute('title');
	return true;
})(%s)`, jsString(handle))
}

// observeJS installs a MutationObserver on the listing collection that calls
// the named runtime binding once per mutation callback.
func observeJS(binding string) string {
	return fmt.Sprintf(`
(function(name) {
	var root = document.querySelector('[aria-label="Collection of Marketplace items"]') ||
	           document.querySelector('div[role="main"]') || document.body;
	window.__mpaObservers = window.__mpaObservers || {};
	if (window.__mpaObservers[name]) window.__mpaObservers[name].disconnect();
	var obs = new MutationObserver(function() {
		if (typeof window[name] === 'function') window[name]('');
	});
	obs.observe(root, {childList: true, subtree: true});
	window.__mpaObservers[name] = obs;
	return true;
})(%s)`, jsString(binding))
}

// findDescriptionJS is a page-side function that returns the description
// node whose text starts like current, or null.
const findDescriptionJS = `function(current) {
	if (!current) return null;
	var nodes = document.querySelectorAll('[dir="auto"]');
	for (var i = 0; i < nodes.length; i++) {
		var t = nodes[i].textContent || '';
		if (t.trim().indexOf(current.slice(0, 40)) === 0) return nodes[i];
	}
	return null;
}`

// watchDescriptionJS observes the detail description node for text growth
// (the "See more" expansion) and reports the full text to the binding.
func watchDescriptionJS(binding, current string) string {
	return fmt.Sprintf(`
(function(name, current) {
	var target = (%s)(current);
	if (!target) return false;
	window.__mpaObservers = window.__mpaObservers || {};
	if (window.__mpaObservers[name]) window.__mpaObservers[name].disconnect();
	var obs = new MutationObserver(function() {
		if (typeof window[name] === 'function') window[name](target.textContent.trim());
	});
	obs.observe(target, {characterData: true, childList: true, subtree: true});
	window.__mpaObservers[name] = obs;
	return true;
})(%s, %s)`, findDescriptionJS, jsString(binding), jsString(current))
}

func disconnectJS(binding string) string {
	return fmt.Sprintf(`
(function(name) {
	var obs = window.__mpaObservers && window.__mpaObservers[name];
	if (obs) { obs.disconnect(); delete window.__mpaObservers[name]; }
	return true;
})(%s)`, jsString(binding))
}

const scrollJS = `window.scrollBy(0, Math.round(window.innerHeight * 0.8))`

// expandDescriptionJS clicks the "See more" control inside the description
// node that starts like current, if there is one.
func expandDescriptionJS(current string) string {
	return fmt.Sprintf(`
(function(current) {
	var target = (%s)(current);
	if (!target) return false;
	var buttons = target.querySelectorAll('[role="button"]');
	for (var i = 0; i < buttons.length; i++) {
		if ((buttons[i].textContent || '').trim() === 'See more') {
			buttons[i].click();
			return true;
		}
	}
	return false;
})(%s)`, findDescriptionJS, jsString(current))
}
